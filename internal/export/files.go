package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"slackdm/internal/slack"
	"slackdm/internal/status"
	"slackdm/internal/transcript"
)

// unsafeNameChars are stripped from file titles before they become path
// components.
var unsafeNameChars = regexp.MustCompile(`[\\/*?"<>|]`)

// Downloader fetches the binary content of shared files. Download failures
// and already-existing files are counted, not fatal.
type Downloader struct {
	token     string
	dir       string
	overwrite bool
	layout    string

	http     *http.Client
	resolver *transcript.Resolver
	status   *status.Status
	logger   *slog.Logger
}

// DownloaderConfig configures a Downloader.
type DownloaderConfig struct {
	Token      string
	Dir        string
	Overwrite  bool
	DateLayout string
	Resolver   *transcript.Resolver
	Status     *status.Status
	Logger     *slog.Logger
}

// NewDownloader creates a downloader writing into cfg.Dir.
func NewDownloader(cfg DownloaderConfig) *Downloader {
	return &Downloader{
		token:     cfg.Token,
		dir:       cfg.Dir,
		overwrite: cfg.Overwrite,
		layout:    cfg.DateLayout,
		http:      &http.Client{Timeout: 5 * time.Minute},
		resolver:  cfg.Resolver,
		status:    cfg.Status,
		logger:    cfg.Logger,
	}
}

// CollectFiles scans the message list for downloadable files. The files.list
// endpoint does not cover DMs, so the export JSON is the source of truth.
func CollectFiles(msgs []slack.Message) []slack.File {
	var files []slack.File
	for i := range msgs {
		for _, f := range msgs[i].Files {
			if f.Deleted() || f.URLPrivateDownload == "" {
				continue
			}
			files = append(files, f)
		}
	}
	return files
}

// DownloadAll fetches every file, counting successes and failures.
func (d *Downloader) DownloadAll(ctx context.Context, files []slack.File) {
	for i := range files {
		if err := d.download(ctx, &files[i]); err != nil {
			d.logger.Warn("file download failed", "title", files[i].Title, "err", err)
			d.status.FileFailures++
			continue
		}
		d.status.FilesDownloaded++
	}
	d.logger.Info("file download complete",
		"downloaded", d.status.FilesDownloaded, "failed", d.status.FileFailures)
	if d.status.FilesAlreadyExist > 0 {
		if d.overwrite {
			d.logger.Info("existing files were overwritten",
				"count", d.status.FilesAlreadyExist)
		} else {
			d.logger.Info("existing files were not re-downloaded",
				"count", d.status.FilesAlreadyExist)
		}
	}
}

func (d *Downloader) download(ctx context.Context, f *slack.File) error {
	saveLoc := d.savePath(f)
	if err := makeDirs(saveLoc); err != nil {
		return err
	}

	if _, err := os.Stat(saveLoc); err == nil {
		d.status.FilesAlreadyExist++
		if !d.overwrite {
			d.logger.Info("file already exists, skipping", "path", saveLoc)
			return nil
		}
		d.logger.Info("file already exists, overwriting", "path", saveLoc)
	}

	d.logger.Info("downloading file",
		"url", f.URLPrivateDownload, "size", humanize.IBytes(uint64(f.Size)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URLPrivateDownload, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(saveLoc)
	if err != nil {
		return fmt.Errorf("create %s: %w", saveLoc, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", saveLoc, err)
	}
	return nil
}

// savePath builds <dir>/<owner>/<full timestamp>- <sanitized name>. Files
// are grouped per owner, prefixed with their share time so repeated titles
// stay distinct.
func (d *Downloader) savePath(f *slack.File) string {
	name := f.Title
	if name == "" {
		name = "No title given"
	}
	if f.Filetype != "" && !strings.HasSuffix(name, f.Filetype) {
		name += "." + f.Filetype
	}
	name = strings.ReplaceAll(name, ":", ";")
	name = unsafeNameChars.ReplaceAllString(name, "")

	owner := d.resolver.DisplayName(f.User, "")
	ts := transcript.FileTimestamp(fmt.Sprintf("%d", f.Timestamp), d.layout)
	return filepath.Join(d.dir, owner, fmt.Sprintf("%s- %s", ts, name))
}
