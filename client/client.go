// Package client provides the top-level façade over the pool, scheduler
// and protocol session: a single entry point that accepts work and
// returns task IDs, collapsing the Python original's two parallel
// AdvancedFTPClient implementations (client/advanced_client.py's pool-
// backed class and its single-connection sibling lower in the same
// file) into one type parameterized by pool size, per spec.md §9's
// explicit redesign note: "pool_size=1 recovers single-session
// behavior".
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ftp "github.com/kestrelftp/ftpclient"
	"github.com/kestrelftp/ftpclient/config"
	"github.com/kestrelftp/ftpclient/internal/logging"
	"github.com/kestrelftp/ftpclient/metrics"
	"github.com/kestrelftp/ftpclient/pool"
	"github.com/kestrelftp/ftpclient/scheduler"
	"github.com/kestrelftp/ftpclient/task"
)

// Client is the façade described in SPEC_FULL.md §4.5: it owns a
// connection pool and a scheduler, dispatches Upload/Download/Delete/
// Rename/Mkdir/Rmdir/List as tasks, and coordinates recursive directory
// transfers itself rather than from within a worker.
type Client struct {
	cfg       *config.Config
	pool      *pool.Pool
	scheduler *scheduler.Scheduler
	logger    logging.Logger
	metrics   metrics.Collector
}

// Option configures a Client at construction.
type Option func(*Client)

func WithLogger(l logging.Logger) Option    { return func(c *Client) { c.logger = l } }
func WithMetrics(m metrics.Collector) Option { return func(c *Client) { c.metrics = m } }

// New builds a Client from cfg: a pool of size cfg.MaxConcurrentTransfers
// backed by a factory that dials and logs into cfg's host/credentials,
// and a scheduler of the same size wired to dispatch handlers for every
// task.Kind.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		logger:  logging.NoOp(),
		metrics: metrics.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}

	factory := func(ctx context.Context) (*ftp.Session, error) {
		addr := fmt.Sprintf("%s:%d", cfg.DefaultHost, cfg.DefaultPort)

		sessOpts := []ftp.Option{
			ftp.WithTimeout(cfg.Timeout),
			ftp.WithKeepAliveInterval(cfg.KeepAliveInterval),
		}
		if cfg.BandwidthLimit > 0 {
			sessOpts = append(sessOpts, ftp.WithBandwidthLimit(cfg.BandwidthLimit))
		}
		if !cfg.PassiveMode {
			sessOpts = append(sessOpts, ftp.WithActiveMode())
		}
		if cfg.EnableSSL {
			sessOpts = append(sessOpts, ftp.WithExplicitTLS(buildTLSConfig(cfg.TLSVerify, cfg.DefaultHost)))
		}

		session, err := ftp.Dial(addr, sessOpts...)
		if err != nil {
			return nil, err
		}
		if err := session.Login(cfg.DefaultUsername, cfg.DefaultPassword); err != nil {
			_ = session.Quit()
			return nil, err
		}
		return session, nil
	}

	poolOpts := []pool.Option{pool.WithLogger(c.logger), pool.WithMetrics(c.metrics)}
	c.pool = pool.New(cfg.MaxConcurrentTransfers, cfg.IdleTimeout, factory, poolOpts...)

	handlers := map[task.Kind]scheduler.HandlerFunc{
		task.Upload: func(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
			return handleUpload(ctx, session, t, c.logger)
		},
		task.Download: func(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
			return handleDownload(ctx, session, t, c.logger)
		},
		task.Delete:  handleDelete,
		task.Rename:  handleRename,
		task.Mkdir:   handleMkdir,
		task.Rmdir:   handleRmdir,
		task.List:    handleList,
	}

	schedOpts := []scheduler.Option{
		scheduler.WithLogger(c.logger),
		scheduler.WithMetrics(c.metrics),
		scheduler.WithAutoRetry(cfg.AutoRetry),
		scheduler.WithBackoffMultiplier(cfg.RetryBackoff),
	}
	c.scheduler = scheduler.New(c.pool, cfg.MaxConcurrentTransfers, handlers, schedOpts...)

	return c
}

func (c *Client) submit(kind task.Kind, args []string, priority task.Priority, cb task.Callbacks) string {
	id, err := c.scheduler.Submit(kind, args, priority, cb, c.cfg.MaxRetries, c.cfg.RetryDelay)
	if err != nil {
		c.logger.Warn("submit rejected, scheduler is shutting down", "kind", kind.String())
	}
	return id
}

// Upload queues a local file for upload to remotePath, returning the
// task ID. Resume is attempted when resume is true, skipping bytes
// already present remotely (ftp.Session.StoreAt's ErrAlreadyComplete
// short-circuit handles the already-complete case). When verify is
// true, the task's result (a *TransferResult) carries the local file's
// MD5/CRC-32 digests per spec.md §4.1's optional integrity check.
func (c *Client) Upload(localPath, remotePath string, priority task.Priority, resume, verify bool, cb task.Callbacks) string {
	args := []string{localPath, remotePath, boolArg(resume), boolArg(verify)}
	return c.submit(task.Upload, args, priority, cb)
}

// Download queues remotePath for download to localPath. See Upload for
// the resume/verify semantics.
func (c *Client) Download(remotePath, localPath string, priority task.Priority, resume, verify bool, cb task.Callbacks) string {
	args := []string{remotePath, localPath, boolArg(resume), boolArg(verify)}
	return c.submit(task.Download, args, priority, cb)
}

// Delete queues removal of a remote file.
func (c *Client) Delete(remotePath string, priority task.Priority, cb task.Callbacks) string {
	return c.submit(task.Delete, []string{remotePath}, priority, cb)
}

// Rename queues a remote rename/move.
func (c *Client) Rename(fromPath, toPath string, priority task.Priority, cb task.Callbacks) string {
	return c.submit(task.Rename, []string{fromPath, toPath}, priority, cb)
}

// Mkdir queues creation of a remote directory.
func (c *Client) Mkdir(remotePath string, priority task.Priority, cb task.Callbacks) string {
	return c.submit(task.Mkdir, []string{remotePath}, priority, cb)
}

// Rmdir queues removal of a remote directory.
func (c *Client) Rmdir(remotePath string, priority task.Priority, cb task.Callbacks) string {
	return c.submit(task.Rmdir, []string{remotePath}, priority, cb)
}

// List queues a directory listing, the result delivered through cb's
// OnComplete as []*ftp.Entry.
func (c *Client) List(remotePath string, priority task.Priority, cb task.Callbacks) string {
	return c.submit(task.List, []string{remotePath}, priority, cb)
}

// Wait blocks until the task reaches a terminal state or timeout elapses,
// returning true only if it completed successfully.
func (c *Client) Wait(taskID string, timeout time.Duration) bool {
	return c.scheduler.WaitForTask(taskID, timeout)
}

// WaitAll blocks until every queued and running task has finished.
func (c *Client) WaitAll(timeout time.Duration) bool {
	return c.scheduler.WaitAll(timeout)
}

// Cancel requests cancellation of a still-pending task.
func (c *Client) Cancel(taskID string) bool {
	return c.scheduler.Cancel(taskID)
}

// Inspect returns a snapshot of the task's current state.
func (c *Client) Inspect(taskID string) (task.Snapshot, bool) {
	return c.scheduler.Inspect(taskID)
}

// DownloadDirectory recursively mirrors remoteDir into localDir. Per
// spec.md §9's anti-deadlock redesign note, this traversal runs on the
// calling goroutine rather than inside a worker: it lists a directory,
// waits for that listing to complete, then either recurses or submits a
// leaf Download task, so the fan-out of directory listings can never
// starve the worker pool into self-deadlock. Returns every task ID
// created for a file transfer, in submission order.
func (c *Client) DownloadDirectory(remoteDir, localDir string, priority task.Priority, cb task.Callbacks) ([]string, error) {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, err
	}

	var entries []*ftp.Entry
	done := make(chan struct{})
	listCB := task.Callbacks{
		OnComplete: func(result any) {
			if e, ok := result.([]*ftp.Entry); ok {
				entries = e
			}
			close(done)
		},
		OnError: func(error) { close(done) },
	}

	listID := c.submit(task.List, []string{remoteDir}, task.High, listCB)
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("client: listing %s timed out", remoteDir)
	}
	if snap, ok := c.Inspect(listID); ok && snap.Status != task.Completed {
		return nil, fmt.Errorf("client: listing %s failed: %w", remoteDir, snap.Err)
	}

	var taskIDs []string
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		remotePath := filepath.ToSlash(filepath.Join(remoteDir, entry.Name))
		localPath := filepath.Join(localDir, entry.Name)

		if entry.Type == "dir" {
			sub, err := c.DownloadDirectory(remotePath, localPath, priority, cb)
			if err != nil {
				return taskIDs, err
			}
			taskIDs = append(taskIDs, sub...)
			continue
		}

		id := c.Download(remotePath, localPath, priority, true, false, cb)
		taskIDs = append(taskIDs, id)
	}

	return taskIDs, nil
}

// Close shuts down the scheduler (draining in-flight work) and the
// connection pool.
func (c *Client) Close() {
	c.scheduler.Shutdown(true)
}

// buildTLSConfig translates config.VerifyPolicy into a *tls.Config for
// the control/data TLS layer. verify_peer_only is the one case the
// standard library has no direct knob for: it is implemented by
// disabling the built-in verifier and supplying a VerifyPeerCertificate
// callback that runs the same chain verification minus the hostname
// check, the standard pattern for "trust the CA, not the name" in Go.
func buildTLSConfig(policy config.VerifyPolicy, serverName string) *tls.Config {
	switch policy {
	case config.NoVerify:
		return &tls.Config{ServerName: serverName, InsecureSkipVerify: true}
	case config.VerifyPeerOnly:
		return &tls.Config{
			ServerName:            serverName,
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: verifyChainIgnoringHostname,
		}
	default: // config.VerifyFull and any unrecognized value
		return &tls.Config{ServerName: serverName}
	}
}

func verifyChainIgnoringHostname(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("client: no certificate presented")
	}

	certs := make([]*x509.Certificate, len(rawCerts))
	for i, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return fmt.Errorf("client: parsing peer certificate: %w", err)
		}
		certs[i] = cert
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	_, err := certs[0].Verify(x509.VerifyOptions{Intermediates: intermediates})
	return err
}

func boolArg(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// openWrite is a small helper shared by the upload/download handlers,
// mirroring UploadFile/DownloadFile's os.Open/os.Create pairing in the
// teacher's session.go.
func openWrite(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
