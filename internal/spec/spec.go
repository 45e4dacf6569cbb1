// Package spec holds the YAML shape of a pipeline file.
package spec

// TransformOptions configure an inproc transformer. Names are parsed when
// the pipeline is compiled.
type TransformOptions struct {
	Format        string `yaml:"format"`
	DType         string `yaml:"dtype"`
	ColorSpace    string `yaml:"color_space"`
	OldColorSpace string `yaml:"old_color_space"`
}

type RetryPolicy struct {
	Attempts  int `yaml:"attempts"`
	BackoffMS int `yaml:"backoff_ms"`
}

type TransformerSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // "inproc" or "grpc"

	// inproc
	Op      string           `yaml:"op"` // e.g. "clamp_bounding_boxes"
	Options TransformOptions `yaml:"options"`

	// grpc
	Address string `yaml:"address"` // e.g. "localhost:50051"

	TimeoutMS   int         `yaml:"timeout_ms"`
	RetryPolicy RetryPolicy `yaml:"retry_policy"`
}

type StdoutSink struct {
	PrintCounter bool `yaml:"print_counter"`
	AckBatchSize int  `yaml:"ack_batch_size"`
	AckFlushMS   int  `yaml:"ack_flush_ms"`
}

type KafkaSink struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	RequiredAcks int16    `yaml:"required_acks"` // 0, 1, -1
}

type SinkConfigs struct {
	Stdout StdoutSink `yaml:"stdout"`
	Kafka  KafkaSink  `yaml:"kafka"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	// Source is optional; without it only the gRPC service runs.
	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	// Ordered stages applied to every frame between source and sinks.
	Transformers []TransformerSpec `yaml:"transformers"`

	// Ordered inproc transformers exposed by the gRPC Transformer service.
	Serve []TransformerSpec `yaml:"serve"`

	Sinks       []string    `yaml:"sinks"`
	SinkConfigs SinkConfigs `yaml:"sink_configs"`
}
