// Package hotelsearch embeds the hotel retrieval engine in a Go program, backed by a
// Redis 8+ instance whose hotel index was provisioned by hotelload.
//
// A query is a slot map as produced by a dialogue state tracker. Exactly one retrieval
// strategy runs per call: facilities select vector search, then name, then address
// select keyword search, otherwise type, price and rating act as plain filters.
//
//	client, _ := hotelsearch.New(ctx,
//	    hotelsearch.WithRedis("localhost:6379", ""),
//	    hotelsearch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	hotels, _ := client.Search(ctx, hotelsearch.Query{
//	    "facilities":        []string{"免费WiFi", "停车场"},
//	    "price_range_upper": 500,
//	    "sort.slot":         "rating",
//	    "sort.ordering":     "descend",
//	}, 5)
package hotelsearch
