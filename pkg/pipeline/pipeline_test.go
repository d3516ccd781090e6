package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type genFunc func(ctx context.Context, prompt string) (model.Result[model.ImageGeneration], error)

func (f genFunc) GenerateImage(ctx context.Context, prompt string) (model.Result[model.ImageGeneration], error) {
	return f(ctx, prompt)
}

type fetchFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetchFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

type uploadFunc func(ctx context.Context, name string, data []byte) (model.Result[model.UploadReceipt], error)

func (f uploadFunc) UploadToIPFS(ctx context.Context, name string, data []byte) (model.Result[model.UploadReceipt], error) {
	return f(ctx, name, data)
}

const gateway = "https://gateway.mesh3.network"

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func okGenerator(t *testing.T) genFunc {
	return func(context.Context, string) (model.Result[model.ImageGeneration], error) {
		return model.Ok(decode[model.ImageGeneration](t, `{"image":{"data":[{"url":"U","revised_prompt":"R"}]}}`)), nil
	}
}

func okFetcher(context.Context, string) ([]byte, error) { return []byte("png"), nil }

func okUploader(t *testing.T) uploadFunc {
	return func(context.Context, string, []byte) (model.Result[model.UploadReceipt], error) {
		return model.Ok(decode[model.UploadReceipt](t, `{"data":{"data":[{"data":{"Hash":"H"}}]}}`)), nil
	}
}

func withTestLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t)))
}

// TestGenerateAndStoreComposition checks the exact JSON of a successful run.
func TestGenerateAndStoreComposition(t *testing.T) {
	withTestLogger(t)
	var fetchedURL, uploadedName string
	var uploaded []byte

	fetch := fetchFunc(func(_ context.Context, url string) ([]byte, error) {
		fetchedURL = url
		return []byte("png"), nil
	})
	up := okUploader(t)
	record := uploadFunc(func(ctx context.Context, name string, data []byte) (model.Result[model.UploadReceipt], error) {
		uploadedName, uploaded = name, data
		return up(ctx, name, data)
	})

	p := New(okGenerator(t), fetch, record, gateway)
	res := p.GenerateAndStore(context.Background(), "P")

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":true,"data":{"originalPrompt":"P","revisedPrompt":"R","imageUrl":"U","ipfsUrl":"https://gateway.mesh3.network/ipfs/H","ipfshash":"H"}}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
	if fetchedURL != "U" || uploadedName != ImageFileName || string(uploaded) != "png" {
		t.Fatalf("unexpected stage inputs: fetch %q upload %q %q", fetchedURL, uploadedName, uploaded)
	}
}

func TestGenerateAndStoreOmitsMissingRevisedPrompt(t *testing.T) {
	withTestLogger(t)
	gen := genFunc(func(context.Context, string) (model.Result[model.ImageGeneration], error) {
		return model.Ok(decode[model.ImageGeneration](t, `{"image":{"data":[{"url":"U"}]}}`)), nil
	})
	res := New(gen, fetchFunc(okFetcher), okUploader(t), gateway).GenerateAndStore(context.Background(), "P")
	data, ok := res.Data()
	if !ok || data.RevisedPrompt != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	b, _ := json.Marshal(data)
	if string(b) != `{"originalPrompt":"P","imageUrl":"U","ipfsUrl":"https://gateway.mesh3.network/ipfs/H","ipfshash":"H"}` {
		t.Fatalf("unexpected JSON %s", b)
	}
}

// TestGenerateAndStoreFailFast checks that no later stage runs once an
// earlier one fails, and that the failure carries the expected message.
func TestGenerateAndStoreFailFast(t *testing.T) {
	withTestLogger(t)
	authErr := errors.New("Cant get Ursula Auth")

	tests := []struct {
		name        string
		gen         genFunc
		fetch       fetchFunc
		up          func(t *testing.T) uploadFunc
		wantErr     string
		wantFetches int
		wantUploads int
	}{
		{
			name: "generation failed",
			gen: func(context.Context, string) (model.Result[model.ImageGeneration], error) {
				return model.FailMsg[model.ImageGeneration]("request failed with status code 500"), nil
			},
			wantErr: "Failed to generate image",
		},
		{
			name: "generation returned no url",
			gen: func(context.Context, string) (model.Result[model.ImageGeneration], error) {
				return model.Ok(model.ImageGeneration{}), nil
			},
			wantErr: "Failed to generate image",
		},
		{
			name: "authorization failed",
			gen: func(context.Context, string) (model.Result[model.ImageGeneration], error) {
				return model.Result[model.ImageGeneration]{}, authErr
			},
			wantErr: "Cant get Ursula Auth",
		},
		{
			name: "download failed",
			fetch: func(context.Context, string) ([]byte, error) {
				return nil, errors.New("download U: status code 404")
			},
			wantErr:     "download U: status code 404",
			wantFetches: 1,
		},
		{
			name: "upload failed",
			up: func(*testing.T) uploadFunc {
				return func(context.Context, string, []byte) (model.Result[model.UploadReceipt], error) {
					return model.FailMsg[model.UploadReceipt]("Budget can't be verified"), nil
				}
			},
			wantErr:     "Failed to upload to IPFS",
			wantFetches: 1,
			wantUploads: 1,
		},
		{
			name: "upload returned no hash",
			up: func(*testing.T) uploadFunc {
				return func(context.Context, string, []byte) (model.Result[model.UploadReceipt], error) {
					return model.Ok(model.UploadReceipt{}), nil
				}
			},
			wantErr:     "Failed to upload to IPFS",
			wantFetches: 1,
			wantUploads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := tt.gen
			if gen == nil {
				gen = okGenerator(t)
			}
			fetch := tt.fetch
			if fetch == nil {
				fetch = okFetcher
			}
			up := okUploader(t)
			if tt.up != nil {
				up = tt.up(t)
			}

			fetches, uploads := 0, 0
			countingFetch := fetchFunc(func(ctx context.Context, url string) ([]byte, error) {
				fetches++
				return fetch(ctx, url)
			})
			countingUp := uploadFunc(func(ctx context.Context, name string, data []byte) (model.Result[model.UploadReceipt], error) {
				uploads++
				return up(ctx, name, data)
			})

			res := New(gen, countingFetch, countingUp, gateway).GenerateAndStore(context.Background(), "P")
			if res.Success() {
				t.Fatal("expected failure")
			}
			if res.Error() != tt.wantErr {
				t.Fatalf("error = %q, want %q", res.Error(), tt.wantErr)
			}
			if _, ok := res.Data(); ok {
				t.Fatal("failed run must not expose data")
			}
			if fetches != tt.wantFetches || uploads != tt.wantUploads {
				t.Fatalf("fetches=%d uploads=%d, want %d/%d", fetches, uploads, tt.wantFetches, tt.wantUploads)
			}

			b, _ := json.Marshal(res)
			want := `{"success":false,"data":null,"error":"` + tt.wantErr + `"}`
			if string(b) != want {
				t.Fatalf("got %s, want %s", b, want)
			}
		})
	}
}
