// Package mirror copies directories of a remote repository into the local tree.
package mirror

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gabriel-vasile/mimetype"

	"github.com/femnad/pfsync/entity"
	"github.com/femnad/pfsync/internal"
	"github.com/femnad/pfsync/remote"
)

type workItem struct {
	remotePath string
	localPath  string
}

type Downloader struct {
	Source remote.Source
	Repo   string
	DryRun bool
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func contentType(file string) string {
	mtype, err := mimetype.DetectFile(file)
	if err != nil {
		internal.Logger.Debug().Err(err).Str("file", file).Msg("Unable to detect content type")
		return ""
	}
	return mtype.String()
}

func (d Downloader) downloadFile(ctx context.Context, entry remote.TreeEntry, target string, stats *entity.SyncStats) {
	if d.DryRun {
		internal.Logger.Info().Str("source", entry.Path).Str("target", target).Msg("Would download")
		stats.FilesDownloaded++
		return
	}

	internal.Logger.Info().Str("source", entry.Path).Str("target", target).Msg("Downloading")
	if err := d.Source.Download(ctx, entry.DownloadURL, target); err != nil {
		internal.Logger.Error().Err(err).Str("path", entry.Path).Msg("Error downloading file")
		stats.AddError(entry.Path, err)
		return
	}

	stats.FilesDownloaded++
	stats.SyncedFiles = append(stats.SyncedFiles, entity.SyncedFile{Path: target, ContentType: contentType(target)})
}

// Sync mirrors the remote directory source into target, one request at a time. Failures are recorded in
// the returned stats and never stop the walk.
func (d Downloader) Sync(ctx context.Context, group entity.SyncGroup) entity.SyncStats {
	var stats entity.SyncStats
	seen := mapset.NewSet[string]()
	queue := []workItem{{remotePath: strings.Trim(group.Source, "/"), localPath: group.Target}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if !seen.Add(item.remotePath) {
			internal.Logger.Debug().Str("path", item.remotePath).Msg("Already visited, skipping")
			continue
		}

		if err := ctx.Err(); err != nil {
			stats.AddError(item.remotePath, err)
			break
		}

		entries, err := d.Source.List(ctx, d.Repo, item.remotePath)
		if err != nil {
			internal.Logger.Error().Err(err).Str("path", item.remotePath).Msg("Error listing remote directory")
			stats.AddError(item.remotePath, err)
			continue
		}

		for _, entry := range entries {
			if !safeName(entry.Name) {
				stats.AddError(entry.Path, fmt.Errorf("refusing to write entry with unsafe name %q", entry.Name))
				continue
			}

			localPath := filepath.Join(item.localPath, entry.Name)
			switch entry.Type {
			case remote.FileEntry:
				d.downloadFile(ctx, entry, localPath, &stats)
			case remote.DirEntry:
				queue = append(queue, workItem{remotePath: entry.Path, localPath: localPath})
			default:
				internal.Logger.Debug().Str("path", entry.Path).Str("type", string(entry.Type)).
					Msg("Ignoring unsupported entry type")
			}
		}
	}

	if !stats.HasErrors() {
		stats.FilesSynced = stats.FilesDownloaded
	}

	internal.Logger.Info().Str("group", group.Name).Int("downloaded", stats.FilesDownloaded).
		Int("errors", len(stats.Errors)).Msg("Sync group finished")
	return stats
}
