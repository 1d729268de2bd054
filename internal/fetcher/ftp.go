package fetcher

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPFetcher retrieves files from FTP mirrors. Credentials are taken from the
// URL user info; without them the session logs in anonymously.
type FTPFetcher struct {
	timeout time.Duration
}

// NewFTPFetcher returns an FTPFetcher. A zero timeout means 30 seconds.
func NewFTPFetcher(timeout time.Duration) *FTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FTPFetcher{timeout: timeout}
}

type ftpTarget struct {
	addr string
	path string
	user string
	pass string
}

func parseFTPTarget(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "parse ftp url")
	}
	if u.Scheme != "ftp" || u.Host == "" {
		return ftpTarget{}, eris.Errorf("not an ftp url: %q", rawURL)
	}
	if u.Path == "" || u.Path == "/" {
		return ftpTarget{}, eris.Errorf("ftp url has no file path: %q", rawURL)
	}

	t := ftpTarget{addr: u.Host, path: u.Path, user: "anonymous", pass: "anonymous@"}
	if u.Port() == "" {
		t.addr = net.JoinHostPort(u.Hostname(), "21")
	}
	if u.User != nil {
		t.user = u.User.Username()
		t.pass, _ = u.User.Password()
	}
	return t, nil
}

// DownloadToFile retrieves the file named by rawURL into path and returns the
// byte count.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	t, err := parseFTPTarget(rawURL)
	if err != nil {
		return 0, err
	}
	zap.L().Debug("ftp: retrieving", zap.String("addr", t.addr), zap.String("path", t.path))

	conn, err := ftp.Dial(t.addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return 0, eris.Wrapf(err, "ftp dial %s", t.addr)
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(t.user, t.pass); err != nil {
		return 0, eris.Wrapf(err, "ftp login as %s", t.user)
	}
	resp, err := conn.Retr(t.path)
	if err != nil {
		return 0, eris.Wrapf(err, "ftp retr %s", t.path)
	}
	defer resp.Close() //nolint:errcheck

	return writeFile(path, resp)
}
