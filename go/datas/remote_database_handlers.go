// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"fmt"
	"io"
	"net/http"

	"github.com/golang/snappy"
	"github.com/julienschmidt/httprouter"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/constants"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
	"github.com/silt-db/silt/go/util/verbose"
)

// Handler is a remote-protocol endpoint: the client-side httpBatchStore
// talks to a router wired up with these.
type Handler func(w http.ResponseWriter, req *http.Request, ps httprouter.Params, cs chunks.ChunkStore)

// HandleWriteValue validates and lands a batched write: a hint-set
// preamble followed by a chunk stream, children before parents. Every
// chunk is decoded; each of its refs must be satisfied by an earlier chunk
// in the batch, by the store, or by a chunk reachable from the hints.
func HandleWriteValue(w http.ResponseWriter, req *http.Request, ps httprouter.Params, cs chunks.ChunkStore) {
	handle(w, req, func(body io.Reader) int {
		hints := deserializeHints(body)
		haver := newCachingChunkHaver(cs)
		for hint := range hints {
			hintChunk := cs.Get(hint)
			if hintChunk.IsEmpty() {
				continue
			}
			types.DecodeValue(hintChunk, nil).WalkRefs(func(r types.Ref) {
				haver.setHas(r.TargetHash(), true)
			})
		}

		batch := []chunks.Chunk{}
		chunkChan := make(chan *chunks.Chunk, 16)
		errChan := make(chan error, 1)
		go func() {
			errChan <- chunks.Deserialize(body, chunkChan)
			close(chunkChan)
		}()
		for c := range chunkChan {
			batch = append(batch, *c)
		}
		if err := <-errChan; err != nil {
			verbose.Log("rejecting batch: %s", err)
			return http.StatusBadRequest
		}

		inBatch := hash.HashSet{}
		for _, c := range batch {
			v := types.DecodeValue(c, nil)
			unsatisfied := hash.Hash{}
			v.WalkRefs(func(r types.Ref) {
				th := r.TargetHash()
				if inBatch.Has(th) || haver.Has(th) {
					return
				}
				unsatisfied = th
			})
			if !unsatisfied.IsEmpty() {
				verbose.Log("rejecting batch: chunk %s references absent chunk %s", c.Hash(), unsatisfied)
				return http.StatusBadRequest
			}
			inBatch.Insert(c.Hash())
		}

		cs.PutMany(batch)
		return http.StatusCreated
	})
}

// HandleGetRefs streams back every requested chunk which is present.
func HandleGetRefs(w http.ResponseWriter, req *http.Request, ps httprouter.Params, cs chunks.ChunkStore) {
	handle(w, req, func(body io.Reader) int {
		hashes := deserializeHashes(body)
		w.Header().Set("Content-Type", "application/octet-stream")
		for _, h := range hashes {
			c := cs.Get(h)
			if !c.IsEmpty() {
				chunks.Serialize(c, w)
			}
		}
		return http.StatusOK
	})
}

// HandleHasRefs answers presence for each requested hash, one per line.
func HandleHasRefs(w http.ResponseWriter, req *http.Request, ps httprouter.Params, cs chunks.ChunkStore) {
	handle(w, req, func(body io.Reader) int {
		hashes := deserializeHashes(body)
		w.Header().Set("Content-Type", "text/plain")
		for _, h := range hashes {
			fmt.Fprintf(w, "%s %t\n", h, cs.Has(h))
		}
		return http.StatusOK
	})
}

// HandleRootGet returns the current root hash.
func HandleRootGet(w http.ResponseWriter, req *http.Request, ps httprouter.Params, cs chunks.ChunkStore) {
	handle(w, req, func(body io.Reader) int {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "%s", cs.Root())
		return http.StatusOK
	})
}

// HandleRootPost attempts the compare-and-set root update; a lost race
// maps to 409 Conflict.
func HandleRootPost(w http.ResponseWriter, req *http.Request, ps httprouter.Params, cs chunks.ChunkStore) {
	handle(w, req, func(body io.Reader) int {
		params := req.URL.Query()
		last, okLast := hash.MaybeParse(params.Get("last"))
		current, okCurrent := hash.MaybeParse(params.Get("current"))
		if !okLast || !okCurrent {
			return http.StatusBadRequest
		}
		if !cs.UpdateRoot(current, last) {
			return http.StatusConflict
		}
		return http.StatusOK
	})
}

// handle wraps an endpoint body with version negotiation, body decoding,
// and panic recovery.
func handle(w http.ResponseWriter, req *http.Request, body func(body io.Reader) int) {
	w.Header().Set(constants.SiltVersionHeader, constants.SiltVersion)

	if vers := req.Header.Get(constants.SiltVersionHeader); vers != "" && vers != constants.SiltVersion {
		http.Error(w, fmt.Sprintf("version mismatch: server %s, client %s", constants.SiltVersion, vers), http.StatusBadRequest)
		return
	}

	var reader io.Reader = req.Body
	if req.Header.Get("Content-Encoding") == "x-snappy-framed" {
		reader = snappy.NewReader(req.Body)
	}

	err := d.Try(func() {
		status := body(reader)
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
