package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"linkforge/pkg/types"
)

// Artifact 是一个链接产物 (库或可执行文件) 的完整内容
// ID 是内容的 SHA-256，与产物文件名无关。
type Artifact struct {
	hash     types.Hash
	data     []byte
	filename string
}

func NewArtifact(filename string, data []byte) *Artifact {
	sum := sha256.Sum256(data)
	return &Artifact{
		hash:     types.Hash(hex.EncodeToString(sum[:])),
		data:     data,
		filename: filepath.Base(filename),
	}
}

// ReadArtifact 从磁盘读取产物
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return NewArtifact(path, data), nil
}

func (a *Artifact) ID() types.Hash   { return a.hash }
func (a *Artifact) Bytes() []byte    { return a.data }
func (a *Artifact) Size() int64      { return int64(len(a.data)) }
func (a *Artifact) Filename() string { return a.filename }
