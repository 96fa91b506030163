package target

import "linkforge/pkg/core"

// DLLFilename 是 ArtifactNamer 的入口：由 OS 和链接身份决定共享库文件名
// 可执行文件直接使用用户指定的输出路径，不经过这里。
func DLLFilename(o OS, id core.LinkIdentity) (string, error) {
	p, err := Lookup(o)
	if err != nil {
		return "", err
	}
	return p.DLLFilename(id.Name(), id.ExtrasHash().String(), id.Vers()), nil
}
