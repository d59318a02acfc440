// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/snappy"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/constants"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
	"github.com/silt-db/silt/go/util/verbose"
)

const maxHTTPAttempts = 5

// ErrVersionMismatch is the cause of the panic raised when the remote
// server speaks a different chunk-protocol version.
var ErrVersionMismatch = errors.New("remote protocol version mismatch")

type httpDoer interface {
	Do(req *http.Request) (resp *http.Response, err error)
}

// httpBatchStore implements types.BatchStore against a remote server
// speaking the chunk protocol: scheduled puts accumulate, height-ordered,
// in a local put cache and land in one batched POST on Flush.
type httpBatchStore struct {
	host          *url.URL
	auth          string
	httpClient    httpDoer
	unwrittenPuts *orderedChunkCache
	hints         types.Hints
}

func newHTTPBatchStore(baseURL, auth string) *httpBatchStore {
	u, err := url.Parse(baseURL)
	d.PanicIfError(err)
	d.PanicIfFalse(u.Scheme == "http" || u.Scheme == "https", "unsupported scheme: %s", u.Scheme)
	return &httpBatchStore{
		host:          u,
		auth:          auth,
		httpClient:    &http.Client{Timeout: time.Minute},
		unwrittenPuts: newOrderedChunkCache(),
		hints:         types.Hints{},
	}
}

// NewHTTPBatchStore creates a types.BatchStore for the database served at
// baseURL.
func NewHTTPBatchStore(baseURL, auth string) types.BatchStore {
	return newHTTPBatchStore(baseURL, auth)
}

func (bhcs *httpBatchStore) Get(h hash.Hash) chunks.Chunk {
	if pending := bhcs.unwrittenPuts.Get(h); !pending.IsEmpty() {
		return pending
	}

	found := make(map[hash.Hash]chunks.Chunk, 1)
	bhcs.getRefs(hash.HashSlice{h}, found)
	if c, ok := found[h]; ok {
		return c
	}
	return chunks.EmptyChunk
}

func (bhcs *httpBatchStore) GetMany(hashes hash.HashSet, foundChunks chan<- *chunks.Chunk) {
	remaining := hash.HashSlice{}
	for h := range hashes {
		if pending := bhcs.unwrittenPuts.Get(h); !pending.IsEmpty() {
			tmp := pending
			foundChunks <- &tmp
			continue
		}
		remaining = append(remaining, h)
	}
	if len(remaining) == 0 {
		return
	}

	found := make(map[hash.Hash]chunks.Chunk, len(remaining))
	bhcs.getRefs(remaining, found)
	for _, c := range found {
		tmp := c
		foundChunks <- &tmp
	}
}

func (bhcs *httpBatchStore) getRefs(hashes hash.HashSlice, found map[hash.Hash]chunks.Chunk) {
	body := &bytes.Buffer{}
	serializeHashes(body, hashes)

	res := bhcs.requestWithRetry(func() (*http.Request, error) {
		req, err := bhcs.newRequest("POST", constants.GetRefsPath, bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		return req, nil
	})
	defer closeResponse(res)
	bhcs.expectStatus(res, http.StatusOK)

	chunkChan := make(chan *chunks.Chunk, 16)
	done := make(chan struct{})
	go func() {
		for c := range chunkChan {
			found[c.Hash()] = *c
		}
		close(done)
	}()
	err := chunks.Deserialize(res.Body, chunkChan)
	close(chunkChan)
	<-done
	d.PanicIfError(errors.Wrap(err, "reading batch read response"))
}

func (bhcs *httpBatchStore) Has(h hash.Hash) bool {
	if bhcs.unwrittenPuts.has(h) {
		return true
	}

	body := &bytes.Buffer{}
	serializeHashes(body, hash.HashSlice{h})
	res := bhcs.requestWithRetry(func() (*http.Request, error) {
		return bhcs.newRequest("POST", constants.HasRefsPath, bytes.NewReader(body.Bytes()))
	})
	defer closeResponse(res)
	bhcs.expectStatus(res, http.StatusOK)

	data, err := ioutil.ReadAll(res.Body)
	d.PanicIfError(err)
	return strings.Contains(string(data), fmt.Sprintf("%s true", h))
}

func (bhcs *httpBatchStore) SchedulePut(c chunks.Chunk, refHeight uint64, hints types.Hints) {
	bhcs.unwrittenPuts.Insert(c, refHeight)
	bhcs.AddHints(hints)
}

func (bhcs *httpBatchStore) AddHints(hints types.Hints) {
	for h := range hints {
		bhcs.hints[h] = struct{}{}
	}
}

// Flush sends the accumulated hint set and every pending chunk, children
// first, in a single snappy-framed POST.
func (bhcs *httpBatchStore) Flush() {
	pending := bhcs.unwrittenPuts.hashes()
	if len(pending) == 0 {
		return
	}

	body := &bytes.Buffer{}
	sw := snappy.NewBufferedWriter(body)
	serializeHints(sw, bhcs.hints)
	err := bhcs.unwrittenPuts.ExtractChunks(sw)
	d.PanicIfError(err)
	d.PanicIfError(sw.Close())

	res := bhcs.requestWithRetry(func() (*http.Request, error) {
		req, err := bhcs.newRequest("POST", constants.WriteValuePath, bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Content-Encoding", "x-snappy-framed")
		return req, nil
	})
	defer closeResponse(res)
	bhcs.expectStatus(res, http.StatusCreated)

	verbose.Log("wrote %d chunks (%s on the wire)", len(pending), humanize.Bytes(uint64(body.Len())))
	bhcs.unwrittenPuts.Clear(pending)
	bhcs.hints = types.Hints{}
}

func (bhcs *httpBatchStore) Root() hash.Hash {
	res := bhcs.requestWithRetry(func() (*http.Request, error) {
		return bhcs.newRequest("GET", constants.RootPath, nil)
	})
	defer closeResponse(res)
	bhcs.expectStatus(res, http.StatusOK)

	data, err := ioutil.ReadAll(res.Body)
	d.PanicIfError(err)
	if len(data) == 0 {
		return hash.Hash{}
	}
	return hash.Parse(string(data))
}

func (bhcs *httpBatchStore) UpdateRoot(current, last hash.Hash) bool {
	bhcs.Flush()

	params := url.Values{}
	params.Add("last", last.String())
	params.Add("current", current.String())
	if bhcs.auth != "" {
		params.Add("access_token", bhcs.auth)
	}

	res := bhcs.requestWithRetry(func() (*http.Request, error) {
		return bhcs.newRequest("POST", constants.RootPath+"?"+params.Encode(), nil)
	})
	defer closeResponse(res)

	if res.StatusCode == http.StatusConflict {
		return false
	}
	bhcs.expectStatus(res, http.StatusOK)
	return true
}

func (bhcs *httpBatchStore) Close() error {
	return bhcs.unwrittenPuts.Destroy()
}

func (bhcs *httpBatchStore) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	u := *bhcs.host
	if idx := strings.Index(path, "?"); idx >= 0 {
		u.Path = strings.TrimSuffix(u.Path, "/") + path[:idx]
		u.RawQuery = path[idx+1:]
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/") + path
	}
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.SiltVersionHeader, constants.SiltVersion)
	return req, nil
}

// requestWithRetry issues the request built by build, retrying transient
// failures (network errors and 5xx responses) with exponential backoff.
// Every response's version header is checked.
func (bhcs *httpBatchStore) requestWithRetry(build func() (*http.Request, error)) *http.Response {
	b := &backoff.Backoff{
		Min:    128 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < maxHTTPAttempts; attempt++ {
		req, err := build()
		d.PanicIfError(err)

		res, err := bhcs.httpClient.Do(req)
		if err != nil {
			lastErr = errors.Wrap(err, "request failed")
			time.Sleep(b.Duration())
			continue
		}
		bhcs.expectVersion(res)
		if res.StatusCode >= 500 {
			closeResponse(res)
			lastErr = errors.Errorf("server error: %s", res.Status)
			time.Sleep(b.Duration())
			continue
		}
		return res
	}
	d.PanicIfError(lastErr)
	return nil
}

func (bhcs *httpBatchStore) expectVersion(res *http.Response) {
	dataVersion := res.Header.Get(constants.SiltVersionHeader)
	if constants.SiltVersion != dataVersion {
		closeResponse(res)
		panic(d.Wrap(errors.Wrapf(ErrVersionMismatch, "server is at version %s, client is at %s", dataVersion, constants.SiltVersion)))
	}
}

func (bhcs *httpBatchStore) expectStatus(res *http.Response, expected int) {
	if res.StatusCode != expected {
		data, _ := ioutil.ReadAll(res.Body)
		d.Panic("unexpected response status: %s: %s", res.Status, string(data))
	}
}

// closeResponse ensures the response body is fully drained so the
// underlying connection can be reused.
func closeResponse(res *http.Response) error {
	if res == nil {
		return nil
	}
	_, err := io.Copy(ioutil.Discard, res.Body)
	if err != nil {
		return err
	}
	return res.Body.Close()
}
