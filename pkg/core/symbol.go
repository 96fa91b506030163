package core

import "linkforge/pkg/types"

// SymbolHash 计算 STH = hash(crate name, "-", CMH, "-", 类型编码)
//
// 同一个泛型函数的不同单态化实例只在类型编码上不同，STH 就是用来区分它们的。
// 截断到 HashWidth (64 bit)：同一进程里大约要有 2^32 个同名符号才会进入生日碰撞区间。
// 结果以 '_' 开头，mangling 时不会和前面的长度数字混在一起。
func SymbolHash(d Digest, id LinkIdentity, encoding string) types.SymbolHash {
	// 不共享状态：每次调用新建，调用方无需加锁
	s := NewState(d)
	s.WriteStr(id.Name())
	s.WriteStr("-")
	s.WriteStr(id.ExtrasHash().String())
	s.WriteStr("-")
	s.WriteStr(encoding)
	return types.SymbolHash("_" + s.Result())
}
