package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type destroyCall struct {
	PublicID     string
	ResourceType string
}

// fakeRemote records calls and answers like the hosted store does
type fakeRemote struct {
	mu        sync.Mutex
	uploads   []uploader.UploadParams
	payloads  [][]byte
	destroyed []destroyCall

	uploadErr error
	// existing maps public id -> resource type that Destroy reports as "ok"
	existing   map[string]string
	destroyErr map[string]error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{existing: map[string]string{}, destroyErr: map[string]error{}}
}

func (f *fakeRemote) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	reader, ok := file.(io.Reader)
	if !ok {
		return nil, errors.New("unexpected upload payload")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, params)
	f.payloads = append(f.payloads, data)
	f.existing[params.PublicID] = params.ResourceType
	ext := params.Format
	if ext == "" {
		ext = "bin"
	}
	return &uploader.UploadResult{
		PublicID:  params.PublicID,
		SecureURL: fmt.Sprintf("https://res.example.com/demo/%s/upload/v1712345678/%s.%s", params.ResourceType, params.PublicID, ext),
		Bytes:     len(data),
	}, nil
}

func (f *fakeRemote) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, destroyCall{PublicID: params.PublicID, ResourceType: params.ResourceType})
	if err := f.destroyErr[params.PublicID]; err != nil {
		return nil, err
	}
	if f.existing[params.PublicID] == params.ResourceType {
		delete(f.existing, params.PublicID)
		return &uploader.DestroyResult{Result: "ok"}, nil
	}
	return &uploader.DestroyResult{Result: "not found"}, nil
}

func (f *fakeRemote) destroyedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for _, call := range f.destroyed {
		ids = append(ids, call.PublicID+"@"+call.ResourceType)
	}
	return ids
}

func hasPrefixAll(ids []string, prefix string) bool {
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			return false
		}
	}
	return true
}
