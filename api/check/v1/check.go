// Package v1 是 koober.check.v1 的消息定义
package v1

type ReadyCheckReq struct{}

type ReadyCheckReply struct {
	Status  string            `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}
