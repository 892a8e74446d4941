// pagekit 命令行：写入演示数据并按页查询。
//
//	pagekit seed --count 50
//	pagekit page --page 2 --size 10 --order status,score:desc --status active
package main

import (
	"os"

	_ "modernc.org/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
