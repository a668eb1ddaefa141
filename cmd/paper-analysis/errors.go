// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import "github.com/pdiddy/paper-analysis/pkg/types"

// describe renders a failure as the one line shown to the user.
func describe(err error) string {
	switch types.KindOf(err) {
	case types.KindConfiguration:
		return "配置错误: " + err.Error()
	case types.KindPath:
		return "错误: 指定的文件路径不存在!"
	case types.KindExtraction:
		return "提取文本失败: " + err.Error()
	case types.KindRemoteService:
		return "API调用失败: " + err.Error()
	case types.KindWrite:
		return "保存结果失败: " + err.Error()
	default:
		return "错误: " + err.Error()
	}
}
