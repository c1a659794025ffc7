package config

// 构建信息，由 ldflags 注入
var (
	Version    string = "dev"
	CommitHash string = "n/a"
)

// IsProduction 判断是否为生产环境
func IsProduction() bool {
	return Version == "release" && CommitHash != "n/a"
}

// IsDevelopment 判断是否为开发环境
func IsDevelopment() bool {
	return !IsProduction()
}
