package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashwinyue/next-fans/internal/config"
	"github.com/ashwinyue/next-fans/internal/testutil"
)

func newLocalService(t *testing.T) (*Service, string) {
	dir := t.TempDir()
	svc, err := NewServiceFromConfig(context.Background(), &config.StorageConfig{
		Type:  "local",
		Local: config.LocalStorageConfig{BasePath: dir, URLPrefix: "/media/"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc, dir
}

func TestLocalPutOpenRemove(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewAssertHelper(t)
	svc, dir := newLocalService(t)
	assert.Equal(StorageTypeLocal, svc.Type())

	key, url, err := svc.Put(ctx, "creator-1", "Beach.JPG", "image/jpeg", 5, strings.NewReader("hello"))
	assert.NoError(err)
	assert.True(strings.HasPrefix(key, "creator-1/"), key)
	assert.True(strings.HasSuffix(key, ".jpg"), key)
	assert.Equal("/media/"+key, url)

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.NoError(err)

	rc, err := svc.Open(ctx, key)
	assert.NoError(err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal("hello", string(body))

	urls, err := svc.URLs(ctx, []string{key})
	assert.NoError(err)
	assert.Equal(url, urls[0])

	assert.NoError(svc.Remove(ctx, key))
	assert.NoError(svc.Remove(ctx, key))
	_, err = svc.Open(ctx, key)
	assert.Error(err)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	svc, _ := newLocalService(t)
	_, err := svc.Open(context.Background(), "../../etc/passwd")
	if err == nil {
		t.Fatal("expected error for key outside base path")
	}
}

func TestExtensionFromContentType(t *testing.T) {
	key := objectKey(&SaveRequest{FileName: "clip", ContentType: "video/mp4", CreatorID: "c"})
	if !strings.HasSuffix(key, ".mp4") {
		t.Errorf("objectKey() = %s, want .mp4 suffix", key)
	}
}

func TestNewServiceFromConfigErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := NewServiceFromConfig(ctx, &config.StorageConfig{Type: "ftp"}); err == nil {
		t.Error("expected unsupported type error")
	}
	if _, err := NewServiceFromConfig(ctx, &config.StorageConfig{Type: "minio"}); err == nil {
		t.Error("expected missing minio config error")
	}
	if _, err := NewServiceFromConfig(ctx, &config.StorageConfig{Type: "s3"}); err == nil {
		t.Error("expected missing s3 config error")
	}
}

func TestS3Endpoint(t *testing.T) {
	tests := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{AccountID: "abc"}, "https://abc.r2.cloudflarestorage.com"},
		{S3Config{AccountID: "abc", Endpoint: "http://localhost:9000"}, "http://localhost:9000"},
		{S3Config{}, ""},
	}
	for _, tt := range tests {
		if got := tt.cfg.endpoint(); got != tt.want {
			t.Errorf("endpoint() = %s, want %s", got, tt.want)
		}
	}
}
