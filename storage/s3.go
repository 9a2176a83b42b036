package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/staticbackendhq/imgpaste/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3 uploads through the AWS SDK, which resolves the download URL.
type S3 struct {
	svc    *s3.S3
	bucket string
}

// Sessions are shared process-wide per application identity. The first
// provider built for an identity creates the session, later ones reuse it.
// They live as long as the process; ResetSessions only exists for tests.
var (
	sessionsMu sync.Mutex
	sessions   = make(map[string]*session.Session)
)

func sessionFor(cfg Config) (*session.Session, error) {
	key := strings.Join([]string{cfg.AWSRegion, cfg.AWSEndpoint, cfg.AWSAccessKeyID}, "|")

	sessionsMu.Lock()
	defer sessionsMu.Unlock()

	if sess, ok := sessions[key]; ok {
		return sess, nil
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.AWSRegion)}
	if len(cfg.AWSEndpoint) > 0 {
		awsCfg.Endpoint = aws.String(cfg.AWSEndpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if len(cfg.AWSAccessKeyID) > 0 {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}

	sessions[key] = sess
	return sess, nil
}

// ResetSessions forgets every shared session.
func ResetSessions() {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()

	sessions = make(map[string]*session.Session)
}

// ParseBucketURI extracts the bucket name from s3://bucket. A bare bucket
// name is accepted as well.
func ParseBucketURI(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return strings.Trim(uri, "/"), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	} else if u.Scheme != "s3" || len(u.Host) == 0 {
		return "", fmt.Errorf("expected s3://bucket got %s", uri)
	}
	return u.Host, nil
}

func newS3(cfg Config) (*S3, error) {
	bucket, err := ParseBucketURI(cfg.S3BucketURI)
	if err != nil || len(bucket) == 0 {
		return nil, &ConfigError{Field: "s3 bucket"}
	}

	sess, err := sessionFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create aws session: %w", err)
	}

	return &S3{svc: s3.New(sess), bucket: bucket}, nil
}

// Upload puts the object with a public-read ACL. SDK errors are not told
// apart, they all come back as ErrUploadFailed.
func (s *S3) Upload(ctx context.Context, data model.UploadFileData) (string, error) {
	key := ObjectPath(NewObjectName(data.Name, time.Now()))

	obj := &s3.PutObjectInput{}
	obj.Body = bytes.NewReader(data.Data)
	obj.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	obj.Bucket = aws.String(s.bucket)
	obj.Key = aws.String(key)
	obj.ContentType = aws.String(mimeOrDefault(data.MimeType))

	if _, err := s.svc.PutObjectWithContext(ctx, obj); err != nil {
		return "", &UploadError{Err: err}
	}

	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err := req.Build(); err != nil {
		return "", &UploadError{Err: err}
	}

	return req.HTTPRequest.URL.String(), nil
}
