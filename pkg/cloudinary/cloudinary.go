package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps Cloudinary uploads for ride chat attachments.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
	UploadAudio(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
}

const (
	imageEager = "q_auto,f_auto,w_800,c_fill"
	ImageWidth = 800
)

var eagerAsyncFalse = false

// BuildOptimizedImageURL returns a Cloudinary URL with delivery transformations
// for an existing public ID.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

// UploadAudio uploads an audio clip. Cloudinary stores audio under the
// "video" resource type.
func (c *clientImpl) UploadAudio(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "video",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

type disabledClient struct{}

var errUploadsDisabled = fmt.Errorf("media uploads are not configured")

func (disabledClient) UploadImage(context.Context, io.Reader, string, string) (string, error) {
	return "", errUploadsDisabled
}

func (disabledClient) UploadAudio(context.Context, io.Reader, string, string) (string, error) {
	return "", errUploadsDisabled
}

// Disabled returns a Client whose uploads always fail. Used when no
// Cloudinary credentials are configured.
func Disabled() Client {
	return disabledClient{}
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}
