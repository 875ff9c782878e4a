package s3client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	appConfig "gsport/config"
	"gsport/internal/models"
	"gsport/pkg/utils"
)

// Client uploads downloaded project data to an S3-compatible bucket.
type Client struct {
	s3Client *s3.Client
	config   *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("no export bucket configured, set BUCKET_NAME")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

// Export uploads the given local paths to the bucket. With
// shouldArchive set, everything is zipped first and uploaded as a
// single object; otherwise files are uploaded individually, at most
// workers at a time.
func (c *Client) Export(ctx context.Context, paths []string, destinationPath string, shouldArchive bool, workers int) (*models.ExportResult, error) {
	startTime := time.Now()

	if err := utils.ValidatePaths(paths); err != nil {
		return nil, fmt.Errorf("path validation failed: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	uploader := manager.NewUploader(c.s3Client)

	var items []models.ExportItem
	var totalSize int64
	var archivePath string

	if shouldArchive {
		archivePath = filepath.Join(os.TempDir(), utils.GenerateArchiveName(paths, ".zip"))
		archiveInfo, err := utils.CreateArchive(paths, archivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive: %w", err)
		}
		defer utils.CleanupTempFile(archivePath)

		remotePath := buildRemotePath(destinationPath, filepath.Base(archivePath))
		if err := c.uploadSingleFile(ctx, uploader, archivePath, remotePath); err != nil {
			return nil, fmt.Errorf("failed to upload archive: %w", err)
		}

		totalSize = archiveInfo.CompressedSize
		items = append(items, models.ExportItem{
			LocalPath:  strings.Join(paths, ", "),
			RemotePath: remotePath,
			Size:       archiveInfo.CompressedSize,
			IsArchived: true,
		})
	} else {
		pending, err := collectFiles(paths, destinationPath)
		if err != nil {
			return nil, err
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		for _, item := range pending {
			item := item
			g.Go(func() error {
				if err := c.uploadSingleFile(gctx, uploader, item.LocalPath, item.RemotePath); err != nil {
					return fmt.Errorf("failed to upload %s: %w", item.LocalPath, err)
				}
				mu.Lock()
				items = append(items, item)
				totalSize += item.Size
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &models.ExportResult{
		BucketName:      c.config.BucketName,
		DestinationPath: destinationPath,
		Items:           items,
		TotalFiles:      len(items),
		TotalSizeBytes:  totalSize,
		TotalSizeHuman:  utils.FormatBytes(totalSize),
		OperationTime:   utils.FormatTime(startTime),
		ArchiveCreated:  shouldArchive,
		ArchivePath:     archivePath,
		ExportDuration:  time.Since(startTime).String(),
	}, nil
}

// collectFiles expands files and directory trees into the flat upload
// list, mirroring directory structure under the destination prefix.
func collectFiles(paths []string, destinationPath string) ([]models.ExportItem, error) {
	var pending []models.ExportItem

	for _, localPath := range paths {
		fileInfo, err := os.Stat(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", localPath, err)
		}

		if !fileInfo.IsDir() {
			pending = append(pending, models.ExportItem{
				LocalPath:  localPath,
				RemotePath: buildRemotePath(destinationPath, filepath.Base(localPath)),
				Size:       fileInfo.Size(),
			})
			continue
		}

		err = filepath.Walk(localPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}

			relPath, err := filepath.Rel(localPath, path)
			if err != nil {
				return err
			}

			pending = append(pending, models.ExportItem{
				LocalPath:  path,
				RemotePath: buildRemotePath(destinationPath, filepath.Join(filepath.Base(localPath), relPath)),
				Size:       info.Size(),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return pending, nil
}

func (c *Client) uploadSingleFile(ctx context.Context, uploader *manager.Uploader, localPath, remotePath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(remotePath),
		Body:        file,
		ContentType: aws.String(detectContentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func buildRemotePath(destinationPath, filename string) string {
	filename = filepath.ToSlash(filename)
	if destinationPath == "" {
		return filename
	}

	destinationPath = strings.TrimPrefix(destinationPath, "/")
	if !strings.HasSuffix(destinationPath, "/") {
		destinationPath += "/"
	}

	return destinationPath + filename
}

func detectContentType(filename string) string {
	contentTypes := map[string]string{
		".txt":   "text/plain",
		".html":  "text/html",
		".json":  "application/json",
		".pdf":   "application/pdf",
		".zip":   "application/zip",
		".gz":    "application/gzip",
		".csv":   "text/csv",
		".fastq": "application/octet-stream",
		".bam":   "application/octet-stream",
		".vcf":   "text/plain",
	}

	if contentType, exists := contentTypes[strings.ToLower(filepath.Ext(filename))]; exists {
		return contentType
	}
	return "application/octet-stream"
}
