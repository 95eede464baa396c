// Demo driver: executes a short chain with a fork and shows the authorship
// engine accepting an uncle, rejecting its resubmission and crediting reward
// sinks at finalization.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eigerco/mulberry/internal/authorship"
	"github.com/eigerco/mulberry/internal/chain"
	"github.com/eigerco/mulberry/internal/digest"
	"github.com/eigerco/mulberry/pkg/db"
	"github.com/eigerco/mulberry/pkg/db/pebble"
	"github.com/eigerco/mulberry/pkg/log"
)

var engineDemo = digest.EngineID("demo")

func authorFor(id byte) digest.Digest {
	var author digest.AuthorID
	author[0] = id
	return digest.Digest{{Engine: engineDemo, Data: author[:]}}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func main() {
	loglevel := flag.String("loglevel", "debug", "log level")
	datadir := flag.String("datadir", "", "pebble data directory, in-memory when empty")
	blocks := flag.Uint64("blocks", 6, "number of blocks to execute")
	flag.Parse()

	level, err := log.ParseLogLevel(*loglevel)
	if err != nil {
		fatal(err)
	}
	log.Init(log.Options{LogLevel: level, Type: log.ConsoleLogger})

	var store db.KVStore
	if *datadir == "" {
		store, err = pebble.NewKVStore()
	} else {
		store, err = pebble.NewKVStoreWithPath(*datadir)
	}
	if err != nil {
		fatal(err)
	}
	defer store.Close() //nolint:errcheck

	recent, err := chain.NewRecentChain(store)
	if err != nil {
		fatal(err)
	}

	tally := authorship.NewTallySink()
	cfg := authorship.DefaultConfig()
	cfg.AuthorSource = authorship.DigestFilterSource{
		Filter: []digest.ConsensusEngineID{engineDemo},
	}
	cfg.EventHandlers = []authorship.RewardSink{
		authorship.LogSink{Logger: log.Rewards},
		tally,
	}

	ctrl, err := authorship.New(cfg, store, recent, log.Authorship)
	if err != nil {
		fatal(err)
	}

	var sibling *chain.Header
	for number := uint64(1); number <= *blocks; number++ {
		if err := ctrl.OnInitialize(number); err != nil {
			fatal(err)
		}

		parent, _ := recent.Head()
		producer := byte(number%3 + 1)
		header := chain.Header{
			Number:     number,
			ParentHash: parent,
			Digest:     authorFor(producer),
		}

		// Block 3 gets a competing sibling from another producer, claimable
		// as an uncle one block later.
		if number == 3 {
			fork := chain.Header{Number: 3, ParentHash: parent, Digest: authorFor(9)}
			if err := recent.StoreHeader(fork); err != nil {
				fatal(err)
			}
			sibling = &fork
		}

		var uncles []chain.Header
		if sibling != nil && number >= 4 {
			uncles = []chain.Header{*sibling}
		}

		if err := ctrl.SetUnclesAndAuthor(header.Digest, uncles); err != nil {
			// Expected once the block 3 sibling goes stale: a rejected
			// submission leaves no state, so the block is rebuilt without
			// uncles, the way a producer would.
			log.Authorship.Warn().Uint64("block", number).Err(err).
				Msg("uncle submission rejected, retrying without uncles")
			if err := ctrl.SetUnclesAndAuthor(header.Digest, nil); err != nil {
				fatal(err)
			}
		}

		if err := ctrl.OnFinalize(); err != nil {
			fatal(err)
		}
		if err := recent.SetHead(header); err != nil {
			fatal(err)
		}
	}

	for id := byte(1); id <= 9; id++ {
		var author digest.AuthorID
		author[0] = id
		authored, uncled := tally.Credit(author)
		if authored == 0 && uncled == 0 {
			continue
		}
		log.Root.Info().
			Str("author", author.Hex()).
			Uint64("blocks", authored).
			Uint64("uncles", uncled).
			Msg("final credit")
	}
}
