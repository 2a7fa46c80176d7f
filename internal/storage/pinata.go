package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultPinataEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"
	DefaultPinataGateway  = "https://gateway.pinata.cloud"
)

// PinataStore pins blobs to IPFS through Pinata. Keys are content
// addressed, so the key passed to Put only names the file.
type PinataStore struct {
	JWT      string
	Endpoint string
	Gateway  string
	Client   *http.Client
}

func NewPinataStore(jwt, gateway string) *PinataStore {
	if gateway == "" {
		gateway = DefaultPinataGateway
	}
	return &PinataStore{
		JWT:      jwt,
		Endpoint: DefaultPinataEndpoint,
		Gateway:  strings.TrimRight(gateway, "/"),
		Client:   http.DefaultClient,
	}
}

func (s *PinataStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", path.Base(key))
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.JWT)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "pinata upload")
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pinata upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode pinata response")
	}
	if out.IpfsHash == "" {
		return "", errors.New("pinata upload: empty IpfsHash")
	}
	return s.Gateway + "/ipfs/" + out.IpfsHash, nil
}

// Get fetches a pinned object by its CID through the gateway.
func (s *PinataStore) Get(ctx context.Context, cid string) (io.ReadCloser, error) {
	if cid == "" || strings.ContainsAny(cid, "/?#") {
		return nil, ErrBadKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Gateway+"/ipfs/"+cid, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "pinata fetch")
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, fmt.Errorf("pinata fetch: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
