package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestResultShapes(t *testing.T) {
	ok := Ok(PipelineResult{OriginalPrompt: "p"})
	if !ok.Success() || ok.Error() != "" || ok.Err() != nil {
		t.Fatalf("success result carries failure state: %#v", ok)
	}
	if v, has := ok.Data(); !has || v.OriginalPrompt != "p" {
		t.Fatalf("unexpected data: %#v %v", v, has)
	}

	fail := Fail[PipelineResult](errors.New("boom"))
	if fail.Success() || fail.Error() != "boom" {
		t.Fatalf("unexpected failure state: %#v", fail)
	}
	if _, has := fail.Data(); has {
		t.Fatal("failure result exposes data")
	}

	var zero Result[int]
	if zero.Success() || zero.Error() == "" {
		t.Fatal("zero Result must be a failure with a message")
	}
	if Fail[int](nil).Error() == "" || FailMsg[int]("").Error() == "" {
		t.Fatal("failure message must never be empty")
	}
}

func TestResultJSON(t *testing.T) {
	b, err := json.Marshal(Ok(map[string]string{"k": "v"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"success":true,"data":{"k":"v"}}` {
		t.Fatalf("unexpected success JSON: %s", b)
	}

	b, err = json.Marshal(FailMsg[PipelineResult]("Failed to upload to IPFS"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"success":false,"data":null,"error":"Failed to upload to IPFS"}` {
		t.Fatalf("unexpected failure JSON: %s", b)
	}
}

func TestResultUnmarshalRejectsMixedShapes(t *testing.T) {
	var r Result[string]
	if err := json.Unmarshal([]byte(`{"success":true,"data":"x","error":"y"}`), &r); err == nil {
		t.Fatal("expected error for success with error message")
	}
	if err := json.Unmarshal([]byte(`{"success":false,"data":null}`), &r); err == nil {
		t.Fatal("expected error for failure without message")
	}
	if err := json.Unmarshal([]byte(`{"success":true,"data":"x"}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := r.Data(); v != "x" {
		t.Fatalf("unexpected data: %q", v)
	}
}

func TestMapResult(t *testing.T) {
	r := MapResult(Ok(2), func(v int) string { return "two" })
	if v, _ := r.Data(); v != "two" {
		t.Fatalf("unexpected mapped value %q", v)
	}
	f := MapResult(FailMsg[int]("nope"), func(v int) string { return "never" })
	if f.Success() || f.Error() != "nope" {
		t.Fatalf("failure not preserved: %#v", f)
	}
}

func TestUploadReceiptHash(t *testing.T) {
	var u UploadReceipt
	body := `{"data":{"data":[{"data":{"Name":"generated-image.png","Hash":"QmHash","Size":"12"}}]}}`
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Hash() != "QmHash" {
		t.Fatalf("unexpected hash %q", u.Hash())
	}
	if (UploadReceipt{}).Hash() != "" {
		t.Fatal("empty receipt should have no hash")
	}
	if NewUploadReceipt(StoredObject{Hash: "H"}).Hash() != "H" {
		t.Fatal("NewUploadReceipt lost the hash")
	}
}

func TestImageGenerationFirst(t *testing.T) {
	var g ImageGeneration
	body := `{"image":{"created":1,"data":[{"url":"U","revised_prompt":"R"}]}}`
	if err := json.Unmarshal([]byte(body), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	img, ok := g.First()
	if !ok || img.URL != "U" || img.RevisedPrompt != "R" {
		t.Fatalf("unexpected first image: %#v %v", img, ok)
	}
	if _, ok := (ImageGeneration{}).First(); ok {
		t.Fatal("empty batch reported an image")
	}
}

func TestEnvelopeFlattens(t *testing.T) {
	req := PromptRequest{
		Envelope: Envelope{
			UserAuthPayload: AuthorizationPayload{UserAddress: "0xabc", Signature: "0xsig", Message: "1"},
			NftID:           "42",
		},
		Prompt: "a cat",
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"userAuthPayload":{"userAddress":"0xabc","signature":"0xsig","message":"1"},"nftId":"42","prompt":"a cat"}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestPoolHasSubnet(t *testing.T) {
	p := Pool{Name: "openai", Subnets: []string{"4", "8"}}
	if !p.HasSubnet("8") || p.HasSubnet("5") {
		t.Fatalf("unexpected subnet membership for %#v", p)
	}
}

type codeError struct{ code int }

func (e *codeError) Error() string { return "request failed" }

func TestResultErrKeepsCause(t *testing.T) {
	cause := &codeError{code: 502}
	r := Fail[string](fmt.Errorf("call: %w", cause))

	var ce *codeError
	if !errors.As(r.Err(), &ce) || ce.code != 502 {
		t.Fatalf("cause lost: %v", r.Err())
	}
	if r.Error() != "call: request failed" {
		t.Fatalf("unexpected message %q", r.Error())
	}

	mapped := MapResult(r, func(s string) int { return len(s) })
	if !errors.Is(mapped.Err(), cause) {
		t.Fatalf("MapResult dropped the cause: %v", mapped.Err())
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"success":false,"data":null,"error":"call: request failed"}` {
		t.Fatalf("unexpected failure JSON: %s", b)
	}
}
