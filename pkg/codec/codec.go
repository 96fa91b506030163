// Package codec 提供确定性的 CBOR 编解码
// 同一个值永远得到同一串字节，这是一切“对序列化结果求哈希”的前提。
package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encOptions = cbor.EncOptions{
	// 1. 强制 Map Key 排序 (Canonical)
	// 保证相同的对象生成唯一的编码
	Sort: cbor.SortCanonical,

	// 2. 浮点数必须使用64位表示
	ShortestFloat: cbor.ShortestFloatNone,

	// 3. 时间格式化为 Unix 整数
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 4. 禁止不定长编码 (Indefinite Length)
	IndefLength: cbor.IndefLengthForbidden,

	BigIntConvert: cbor.BigIntConvertShortest,
}

// 全局复用的编码模式
var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	// 限制容器元素数量和嵌套深度，防止恶意构造的输入耗尽内存或栈
	MaxArrayElements: 10000,
	MaxMapPairs:      10000,
	MaxNestedLevels:  100,

	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
	BignumTag:   cbor.BignumTagForbidden,
	TimeTag:     cbor.DecTagIgnored,
}

var dm, _ = decOptions.DecMode()

// Marshal 以 canonical 模式编码
func Marshal(v any) ([]byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return data, nil
}

// MarshalHex 编码后转为小写 hex 文本，便于写入文本形式的哈希帧
func MarshalHex(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// Unmarshal 使用严格模式解码
func Unmarshal(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}

// UnmarshalHex 是 MarshalHex 的逆操作
func UnmarshalHex(text string, v any) error {
	data, err := hex.DecodeString(text)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	return Unmarshal(data, v)
}
