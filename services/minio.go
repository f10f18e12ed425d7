package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinIOService is the external image host. Stories store only the
// public URL; deletes recover the object key from the URL path.
type MinIOService struct {
	appContext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
	baseURL    string
}

const MINIO_SVC = "minio_svc"

// objectKeyPattern extracts "<bucket>/<key>" from a stored asset URL.
var objectKeyPattern = regexp.MustCompile(`^/([^/]+)/(.+)$`)

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "anapurna-assets"
	}

	scheme := "http"
	if svc.useSSL {
		scheme = "https"
	}
	svc.baseURL = fmt.Sprintf("%s://%s", scheme, svc.endpoint)

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("MinIO service started successfully with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinIOService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}

	return nil
}

// UploadImage stores a story image and returns its public URL.
func (svc *MinIOService) UploadImage(prefix string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	objectName := fmt.Sprintf("stories/%s_%d%s", prefix, time.Now().UnixNano(), ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = svc.client.PutObject(context.Background(), svc.bucketName, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", svc.baseURL, svc.bucketName, objectName), nil
}

// DeleteByURL removes the object a stored URL points at. The key is
// parsed out of the URL's path segment.
func (svc *MinIOService) DeleteByURL(assetURL string) error {
	bucket, objectName, err := svc.parseObjectKey(assetURL)
	if err != nil {
		return err
	}

	err = svc.client.RemoveObject(context.Background(), bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v", objectName, err)
	}

	return nil
}

func (svc *MinIOService) parseObjectKey(assetURL string) (bucket, key string, err error) {
	u, parseErr := url.Parse(assetURL)
	if parseErr != nil {
		return "", "", fmt.Errorf("invalid asset URL %s: %v", assetURL, parseErr)
	}

	m := objectKeyPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", "", fmt.Errorf("cannot extract object key from URL: %s", assetURL)
	}
	return m[1], m[2], nil
}

// ==================== MARKDOWN BACKUPS ====================

// UploadBackup stores the markdown rendering of a story under a stable
// slug-derived key, replacing any previous backup.
func (svc *MinIOService) UploadBackup(slug string, content []byte) error {
	objectName := fmt.Sprintf("backups/%s.md", slug)

	_, err := svc.client.PutObject(context.Background(), svc.bucketName, objectName,
		bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: "text/markdown",
		})
	if err != nil {
		return fmt.Errorf("failed to upload backup: %v", err)
	}
	return nil
}

// FetchBackup returns the stored markdown for a slug, or an error when
// no backup exists.
func (svc *MinIOService) FetchBackup(slug string) ([]byte, error) {
	objectName := fmt.Sprintf("backups/%s.md", slug)

	obj, err := svc.client.GetObject(context.Background(), svc.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch backup: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %v", err)
	}
	return data, nil
}

func (svc *MinIOService) DeleteBackup(slug string) error {
	objectName := fmt.Sprintf("backups/%s.md", slug)
	return svc.client.RemoveObject(context.Background(), svc.bucketName, objectName, minio.RemoveObjectOptions{})
}

func (svc *MinIOService) GetBucketName() string {
	return svc.bucketName
}
