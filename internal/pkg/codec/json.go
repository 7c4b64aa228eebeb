// Package codec 提供 Connect 使用的 JSON 编解码器, 消息类型为普通 Go 结构体而非 protobuf
package codec

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Name 与 Connect 内置 protojson 编解码器同名, 注册后替换之
const Name = "json"

var _ connect.Codec = JSON{}

type JSON struct{}

func (JSON) Name() string {
	return Name
}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	// 空请求体等价于空消息
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
