package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	ftp "github.com/kestrelftp/ftpclient"
	"github.com/kestrelftp/ftpclient/internal/checksum"
	"github.com/kestrelftp/ftpclient/internal/humanize"
	"github.com/kestrelftp/ftpclient/internal/logging"
	"github.com/kestrelftp/ftpclient/task"
)

// TransferResult is the result payload recorded on a COMPLETED Upload or
// Download task. Checksum is non-nil only when the task was submitted
// with verify=true (spec.md §4.1's optional integrity verification):
// the caller computes MD5 and CRC-32 of the local file in a single
// streaming pass and records both here, rather than trusting any
// remote-side check.
type TransferResult struct {
	LocalPath  string
	RemotePath string
	Bytes      int64
	Checksum   *checksum.Sums
}

// handleUpload implements task.Upload, grounded on advanced_client.py's
// _handle_upload: open the local file, optionally resume from the
// remote size, stream through Session.Store/StoreAt, and report
// progress via the task's callback.
func handleUpload(ctx context.Context, session *ftp.Session, t *task.Task, log logging.Logger) (any, error) {
	args := t.Args()
	localPath, remotePath, resume, verify := args[0], args[1], args[2] == "true", len(args) > 3 && args[3] == "true"

	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	total := info.Size()

	progress := &ftp.ProgressReader{
		Reader: f,
		Total:  total,
		Callback: func(transferred, total int64, elapsed time.Duration) {
			t.UpdateProgress(transferred, total, elapsed.Seconds())
		},
	}

	if resume {
		if err := session.StoreAt(remotePath, progress, total); err != nil {
			if errors.Is(err, ftp.ErrAlreadyComplete) {
				return uploadResult(localPath, remotePath, total, verify, log)
			}
			return nil, err
		}
		return uploadResult(localPath, remotePath, progress.Transferred(), verify, log)
	}

	if err := session.Store(remotePath, progress); err != nil {
		return nil, err
	}
	return uploadResult(localPath, remotePath, progress.Transferred(), verify, log)
}

// uploadResult builds the task's result payload, optionally computing the
// local file's MD5/CRC-32 digests for the verify=true case.
func uploadResult(localPath, remotePath string, bytes int64, verify bool, log logging.Logger) (*TransferResult, error) {
	result := &TransferResult{LocalPath: localPath, RemotePath: remotePath, Bytes: bytes}
	log.Debug("upload complete", "local_path", localPath, "remote_path", remotePath, "size", humanize.Size(bytes))

	if !verify {
		return result, nil
	}
	sums, err := checksum.File(localPath)
	if err != nil {
		return nil, err
	}
	result.Checksum = &sums
	return result, nil
}

// handleDownload implements task.Download, grounded on
// advanced_client.py's _handle_download.
func handleDownload(ctx context.Context, session *ftp.Session, t *task.Task, log logging.Logger) (any, error) {
	args := t.Args()
	remotePath, localPath, resume := args[0], args[1], args[2] == "true"
	verify := len(args) > 3 && args[3] == "true"

	if resume {
		offset := int64(0)
		if existing, statErr := os.Stat(localPath); statErr == nil {
			offset = existing.Size()
		} else if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, err
		}

		f, err := os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		progress := &ftp.ProgressWriter{
			Writer: f,
			Callback: func(transferred, total int64, elapsed time.Duration) {
				t.UpdateProgress(offset+transferred, 0, elapsed.Seconds())
			},
		}
		if err := session.RetrieveFrom(remotePath, progress, offset); err != nil {
			if errors.Is(err, ftp.ErrAlreadyComplete) {
				return downloadResult(localPath, remotePath, offset, verify, log)
			}
			return nil, err
		}
		return downloadResult(localPath, remotePath, offset+progress.Transferred(), verify, log)
	}

	f, err := openWrite(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	progress := &ftp.ProgressWriter{
		Writer: f,
		Callback: func(transferred, total int64, elapsed time.Duration) {
			t.UpdateProgress(transferred, 0, elapsed.Seconds())
		},
	}
	if err := session.Retrieve(remotePath, progress); err != nil {
		return nil, err
	}
	return downloadResult(localPath, remotePath, progress.Transferred(), verify, log)
}

// downloadResult mirrors uploadResult for the download direction.
func downloadResult(localPath, remotePath string, bytes int64, verify bool, log logging.Logger) (*TransferResult, error) {
	result := &TransferResult{LocalPath: localPath, RemotePath: remotePath, Bytes: bytes}
	log.Debug("download complete", "remote_path", remotePath, "local_path", localPath, "size", humanize.Size(bytes))

	if !verify {
		return result, nil
	}
	sums, err := checksum.File(localPath)
	if err != nil {
		return nil, err
	}
	result.Checksum = &sums
	return result, nil
}

func handleDelete(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
	remotePath := t.Args()[0]
	if err := session.Delete(remotePath); err != nil {
		return nil, err
	}
	return remotePath, nil
}

func handleRename(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
	args := t.Args()
	from, to := args[0], args[1]
	if err := session.Rename(from, to); err != nil {
		return nil, err
	}
	return to, nil
}

func handleMkdir(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
	remotePath := t.Args()[0]
	if err := session.MakeDir(remotePath); err != nil {
		return nil, err
	}
	return remotePath, nil
}

func handleRmdir(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
	remotePath := t.Args()[0]
	if err := session.RemoveDir(remotePath); err != nil {
		return nil, err
	}
	return remotePath, nil
}

func handleList(ctx context.Context, session *ftp.Session, t *task.Task) (any, error) {
	remotePath := t.Args()[0]
	entries, err := session.List(remotePath)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
