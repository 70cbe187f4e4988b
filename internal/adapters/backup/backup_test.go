package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_WriteReplaces(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "nested", "backups"))
	require.NoError(t, err)
	ctx := context.Background()

	dst, err := d.Write(ctx, "smart-feeding-backup-2024-01-01.json", []byte(`{"v":1}`))
	require.NoError(t, err)
	_, err = d.Write(ctx, "smart-feeding-backup-2024-01-01.json", []byte(`{"v":2}`))
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	entries, err := os.ReadDir(d.Path)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestDir_RejectsPaths(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = d.Write(context.Background(), "../escape.json", nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewDir(" ")
	assert.Error(t, err)
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3_Write(t *testing.T) {
	fake := &fakeS3{}
	sink, err := NewS3WithClient(fake, "pets-bucket", "/backups/")
	require.NoError(t, err)

	loc, err := sink.Write(context.Background(), "smart-feeding-backup-2024-01-01.json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "s3://pets-bucket/backups/smart-feeding-backup-2024-01-01.json", loc)
	assert.Equal(t, "backups/smart-feeding-backup-2024-01-01.json", aws.ToString(fake.in.Key))
	assert.Equal(t, "application/json", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "{}", string(fake.body))

	fake.err = errors.New("access denied")
	_, err = sink.Write(context.Background(), "x.json", nil)
	assert.ErrorContains(t, err, "access denied")

	_, err = NewS3WithClient(fake, "", "")
	assert.Error(t, err)
}
