// Package sink persists pipeline documents. Every implementation satisfies
// pipeline.Sink and treats an empty batch as a successful no-op.
package sink

import "github.com/energydata/aep/pkg/pipeline"

var (
	_ pipeline.Sink = (*MongoSink)(nil)
	_ pipeline.Sink = (*FileSink)(nil)
)
