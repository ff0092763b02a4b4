// Package vecgate provides an embedded Go client for read-only retrieval
// over a hosted vector index: text query to ranked previews, id batch to
// full contents.
//
// The client wires the same services the vecgate HTTP server exposes, so
// search and fetch behave identically to the gateway's tool endpoints.
//
//	client, _ := vecgate.New(
//	    vecgate.WithPinecone("https://docs-abc.svc.pinecone.io", apiKey),
//	    vecgate.WithOpenAI(openaiKey, "text-embedding-3-large", 3072),
//	)
//	defer client.Close()
//
//	results := client.Search(ctx, "how do I rotate credentials", 5)
//	objects := client.Fetch(ctx, []string{results[0].ID})
//
// Degradation is soft: when the embedding provider or the index is
// unreachable, Search and Fetch return empty slices rather than errors.
// Malformed input surfaces only through Call, which validates raw tool
// calls the way the HTTP adapters do.
package vecgate
