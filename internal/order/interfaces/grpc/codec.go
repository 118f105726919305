package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName 客户端通过 grpc.CallContentSubtype(CodecName) 选择该编解码器
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
