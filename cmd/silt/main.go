// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// silt is a small CLI over the client library: list datasets, show values
// by path, inspect or serve a database.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/attic-labs/kingpin"
	"github.com/julienschmidt/httprouter"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/config"
	"github.com/silt-db/silt/go/constants"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/datas"
	"github.com/silt-db/silt/go/types"
	"github.com/silt-db/silt/go/util/verbose"
)

func main() {
	app := kingpin.New("silt", "The silt decentralized database CLI.")
	verbose.RegisterVerboseFlags(app)

	ds := app.Command("ds", "List datasets in a database.")
	dsDb := ds.Arg("database", "database spec or alias").Default("").String()

	show := app.Command("show", "Print the value at a path.")
	showPath := show.Arg("path", "path spec, e.g. mem::ds.value[0]").Required().String()

	root := app.Command("root", "Print the root hash of a database.")
	rootDb := root.Arg("database", "database spec or alias").Default("").String()

	serve := app.Command("serve", "Serve an in-memory database over HTTP.")
	servePort := serve.Flag("port", "port to listen on").Default("8000").Int()

	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case ds.FullCommand():
		runDs(*dsDb)
	case show.FullCommand():
		runShow(*showPath)
	case root.FullCommand():
		runRoot(*rootDb)
	case serve.FullCommand():
		runServe(*servePort)
	}
}

func runDs(dbSpec string) {
	cfg := config.NewResolver()
	sp, err := cfg.GetDatabase(dbSpec)
	if err != nil {
		kingpin.Fatalf("%s", err)
	}
	defer sp.Close()

	sp.GetDatabase().Datasets().IterAll(func(k, v types.Value) {
		fmt.Println(k.(types.String))
	})
}

func runShow(pathSpec string) {
	cfg := config.NewResolver()
	sp, err := cfg.GetPath(pathSpec)
	if err != nil {
		kingpin.Fatalf("%s", err)
	}
	defer sp.Close()

	v := sp.GetValue()
	if v == nil {
		kingpin.Fatalf("value not found: %s", pathSpec)
	}
	types.WriteEncodedValue(os.Stdout, v)
	fmt.Println()
}

func runRoot(dbSpec string) {
	cfg := config.NewResolver()
	sp, err := cfg.GetDatabase(dbSpec)
	if err != nil {
		kingpin.Fatalf("%s", err)
	}
	defer sp.Close()

	db := sp.GetDatabase()
	db.Datasets() // force a round trip so the root is fresh
	fmt.Println(db.BatchStore().Root())
}

func runServe(port int) {
	cs := chunks.NewMemoryStore()
	router := httprouter.New()
	router.POST(constants.WriteValuePath, wrap(datas.HandleWriteValue, cs))
	router.POST(constants.GetRefsPath, wrap(datas.HandleGetRefs, cs))
	router.POST(constants.HasRefsPath, wrap(datas.HandleHasRefs, cs))
	router.GET(constants.RootPath, wrap(datas.HandleRootGet, cs))
	router.POST(constants.RootPath, wrap(datas.HandleRootPost, cs))

	fmt.Printf("listening on :%d\n", port)
	d.PanicIfError(http.ListenAndServe(fmt.Sprintf(":%d", port), router))
}

func wrap(h datas.Handler, cs chunks.ChunkStore) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		h(w, req, ps, cs)
	}
}
