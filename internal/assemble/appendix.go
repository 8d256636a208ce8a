package assemble

import (
	"os"
	"path/filepath"
)

// AppendixFileName 是仓库根下承载附录文本的默认文件名。
const AppendixFileName = "todo"

// LoadAppendix 读取 root 下的附录文件（todo）。文件不存在时创建一个空文件
// 并返回空串，首次运行不报错；其余读取错误按软失败交给调用方决定。
func LoadAppendix(root string) (string, error) {
	p := filepath.Join(root, AppendixFileName)
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := os.WriteFile(p, nil, 0o644); werr != nil {
				return "", werr
			}
			return "", nil
		}
		return "", err
	}
	return string(b), nil
}
