package config

import (
	"os"
	"path/filepath"
	"testing"

	"linkforge/pkg/link"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
link:
  linker: clang
  parallelism: 8
target:
  os: freebsd
`), 0644))
	t.Setenv("LF_HASH_ALGORITHM", "blake3")

	require.NoError(t, Load(cfgFile))

	assert.Equal(t, "clang", viper.GetString("link.linker"))
	assert.Equal(t, 8, viper.GetInt("link.parallelism"))
	assert.Equal(t, "freebsd", viper.GetString("target.os"))
	assert.Equal(t, "blake3", viper.GetString("hash.algorithm"), "环境变量覆盖默认值")
	// 未配置的键取默认值
	assert.Equal(t, "lfrt", viper.GetString("link.runtime_lib"))
	assert.Equal(t, link.DefaultRuntimeLibDir(), viper.GetString("link.runtime_lib_dir"), "默认取安装目录下的 lib")
	assert.Equal(t, "sqlite", viper.GetString("cstore.driver"))
}

func TestLoad_BadFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("link: [unclosed"), 0644))
	assert.Error(t, Load(cfgFile))
}
