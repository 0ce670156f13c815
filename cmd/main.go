// @title Marketplace API
// @version 1.0.0
// @description 手工艺品电商后端: 用户、店铺、商品、购物车、订单、评价、收藏点赞、通知与图片
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Marketplace API server",
	Long: `Marketplace API 提供用户、店铺、商品、购物车、订单、评价、
收藏点赞、站内通知与图片上传的 REST 接口。

不带子命令时等同于 serve。`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
