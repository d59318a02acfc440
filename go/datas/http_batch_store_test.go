// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/suite"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/constants"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
)

const testAuthToken = "aToken123"

func TestHTTPBatchStore(t *testing.T) {
	suite.Run(t, &HTTPBatchStoreSuite{})
}

type HTTPBatchStoreSuite struct {
	suite.Suite
	cs    *chunks.TestStoreView
	store *httpBatchStore
}

type inlineServer struct {
	*httprouter.Router
}

func (serv inlineServer) Do(req *http.Request) (resp *http.Response, err error) {
	w := httptest.NewRecorder()
	w.Header().Set(constants.SiltVersionHeader, constants.SiltVersion)
	serv.ServeHTTP(w, req)
	return &http.Response{
			StatusCode: w.Code,
			Status:     http.StatusText(w.Code),
			Header:     w.HeaderMap,
			Body:       ioutil.NopCloser(w.Body),
		},
		nil
}

func (suite *HTTPBatchStoreSuite) SetupTest() {
	suite.cs = chunks.NewTestStore()
	suite.store = newHTTPBatchStoreForTest(suite.cs)
}

func (suite *HTTPBatchStoreSuite) TearDownTest() {
	suite.store.Close()
	suite.cs.Close()
}

func newHTTPBatchStoreForTest(cs chunks.ChunkStore) *httpBatchStore {
	serv := inlineServer{httprouter.New()}
	serv.POST(
		constants.WriteValuePath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			HandleWriteValue(w, req, ps, cs)
		},
	)
	serv.POST(
		constants.GetRefsPath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			HandleGetRefs(w, req, ps, cs)
		},
	)
	serv.POST(
		constants.HasRefsPath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			HandleHasRefs(w, req, ps, cs)
		},
	)
	serv.POST(
		constants.RootPath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			HandleRootPost(w, req, ps, cs)
		},
	)
	serv.GET(
		constants.RootPath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			HandleRootGet(w, req, ps, cs)
		},
	)
	hcs := newHTTPBatchStore("http://localhost:9000", "")
	hcs.httpClient = serv
	return hcs
}

func newAuthenticatingHTTPBatchStoreForTest(suite *HTTPBatchStoreSuite, hostUrl string) *httpBatchStore {
	authenticate := func(req *http.Request) {
		suite.Equal(testAuthToken, req.URL.Query().Get("access_token"))
	}

	serv := inlineServer{httprouter.New()}
	serv.POST(
		constants.RootPath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			authenticate(req)
			HandleRootPost(w, req, ps, suite.cs)
		},
	)
	hcs := newHTTPBatchStore(hostUrl, testAuthToken)
	hcs.httpClient = serv
	return hcs
}

func (suite *HTTPBatchStoreSuite) TestPutChunk() {
	c := types.EncodeValue(types.String("abc"), nil)
	suite.store.SchedulePut(c, 1, types.Hints{})
	suite.store.Flush()

	suite.Equal(1, suite.cs.Writes)
	suite.Equal(c.Data(), suite.cs.Get(c.Hash()).Data())
}

func (suite *HTTPBatchStoreSuite) TestPutChunksInOrder() {
	vals := []types.Value{
		types.String("abc"),
		types.String("def"),
	}
	l := types.NewList()
	for _, val := range vals {
		suite.store.SchedulePut(types.EncodeValue(val, nil), 1, types.Hints{})
		l = l.Append(types.NewRef(val))
	}
	suite.store.SchedulePut(types.EncodeValue(l, nil), 2, types.Hints{})
	suite.store.Flush()

	suite.Equal(3, suite.cs.Writes)
}

func (suite *HTTPBatchStoreSuite) TestRejectsDanglingBatch() {
	// A batch whose chunk references an absent chunk fails validation and
	// nothing is written.
	r := types.NewRef(types.String("not written"))
	l := types.NewList(r)
	suite.store.SchedulePut(types.EncodeValue(l, nil), 2, types.Hints{})
	suite.Panics(func() { suite.store.Flush() })
	suite.Equal(0, suite.cs.Writes)
}

func (suite *HTTPBatchStoreSuite) TestGetChunk() {
	c := types.EncodeValue(types.String("abc"), nil)
	suite.cs.Put(c)
	persistChunks(suite.cs)

	got := suite.store.Get(c.Hash())
	suite.Equal(c.Data(), got.Data())
}

func (suite *HTTPBatchStoreSuite) TestGetAbsentChunk() {
	c := types.EncodeValue(types.String("ghost"), nil)
	suite.True(suite.store.Get(c.Hash()).IsEmpty())
}

func (suite *HTTPBatchStoreSuite) TestGetUnflushedChunk() {
	// Scheduled-but-unflushed chunks read back from the put cache.
	c := types.EncodeValue(types.String("pending"), nil)
	suite.store.SchedulePut(c, 1, types.Hints{})
	suite.Equal(c.Data(), suite.store.Get(c.Hash()).Data())
	suite.Equal(0, suite.cs.Writes)
}

func (suite *HTTPBatchStoreSuite) TestGetMany() {
	c1 := types.EncodeValue(types.String("abc"), nil)
	c2 := types.EncodeValue(types.String("def"), nil)
	suite.cs.Put(c1)
	suite.cs.Put(c2)
	persistChunks(suite.cs)

	got := make(chan *chunks.Chunk, 2)
	suite.store.GetMany(hash.NewHashSet(c1.Hash(), c2.Hash()), got)
	close(got)
	suite.Len(got, 2)
}

func (suite *HTTPBatchStoreSuite) TestHas() {
	c := types.EncodeValue(types.String("abc"), nil)
	suite.False(suite.store.Has(c.Hash()))
	suite.cs.Put(c)
	persistChunks(suite.cs)
	suite.True(suite.store.Has(c.Hash()))
}

func (suite *HTTPBatchStoreSuite) TestRoot() {
	suite.True(suite.store.Root().IsEmpty())

	c := chunks.NewChunk([]byte("root target"))
	suite.cs.Put(c)
	suite.True(suite.store.UpdateRoot(c.Hash(), hash.Hash{}))
	suite.Equal(c.Hash(), suite.store.Root())

	// A stale last loses.
	c2 := chunks.NewChunk([]byte("other"))
	suite.cs.Put(c2)
	suite.False(suite.store.UpdateRoot(c2.Hash(), hash.Hash{}))
	suite.Equal(c.Hash(), suite.store.Root())
}

func (suite *HTTPBatchStoreSuite) TestUpdateRootWithAuth() {
	store := newAuthenticatingHTTPBatchStoreForTest(suite, "http://localhost:9000")
	defer store.Close()

	c := chunks.NewChunk([]byte("auth target"))
	suite.cs.Put(c)
	persistChunks(suite.cs)
	suite.True(store.UpdateRoot(c.Hash(), hash.Hash{}))
}

func (suite *HTTPBatchStoreSuite) TestVersionMismatchPanics() {
	serv := inlineServer{httprouter.New()}
	serv.GET(
		constants.RootPath,
		func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			w.Header().Set(constants.SiltVersionHeader, "BAD")
			w.WriteHeader(http.StatusOK)
		},
	)
	hcs := newHTTPBatchStore("http://localhost:9000", "")
	defer hcs.Close()
	hcs.httpClient = versionOverridingServer{serv}

	suite.Panics(func() { hcs.Root() })
}

// versionOverridingServer doesn't inject the good version header the way
// inlineServer.Do does.
type versionOverridingServer struct {
	serv inlineServer
}

func (s versionOverridingServer) Do(req *http.Request) (*http.Response, error) {
	w := httptest.NewRecorder()
	s.serv.ServeHTTP(w, req)
	return &http.Response{
		StatusCode: w.Code,
		Status:     http.StatusText(w.Code),
		Header:     w.HeaderMap,
		Body:       ioutil.NopCloser(w.Body),
	}, nil
}

func persistChunks(cs chunks.ChunkStore) {
	for !cs.UpdateRoot(cs.Root(), cs.Root()) {
	}
}
