// Package v1 定义服务端与客户端的配置结构, 字段通过 json tag 与 YAML 的 snake_case 键对应
package v1

// Bootstrap 服务端根配置
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Auth     *Auth     `json:"auth"`
	Log      *Log      `json:"log"`
	Trace    *Trace    `json:"trace"`
	Registry *Registry `json:"registry"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

type Database struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DbName   string `json:"db_name"`
	SslMode  string `json:"ssl_mode"`
	Timezone string `json:"timezone"`
}

// Redis 超时字段单位为秒
type Redis struct {
	Host         string `json:"host"`
	Port         int32  `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Db           int32  `json:"db"`
	DialTimeout  int64  `json:"dial_timeout"`
	ReadTimeout  int64  `json:"read_timeout"`
	WriteTimeout int64  `json:"write_timeout"`
	PoolSize     int32  `json:"pool_size"`
	MinIdleConns int32  `json:"min_idle_conns"`
	KeyPrefix    string `json:"key_prefix"`
}

type Auth struct {
	JwtSecret      string `json:"jwt_secret"`
	JwtExpireHours int32  `json:"jwt_expire_hours"`
	Issuer         string `json:"issuer"`
	BcryptCost     int32  `json:"bcrypt_cost"`
}

type Log struct {
	// Level debug/info/warn/error
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

type Trace struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
	Insecure bool   `json:"insecure"`
}

type Registry struct {
	Consul *Consul `json:"consul"`
}

type Consul struct {
	Enabled        bool   `json:"enabled"`
	Address        string `json:"address"`
	Scheme         string `json:"scheme"`
	Token          string `json:"token"`
	ServiceAddress string `json:"service_address"`
	ServicePort    int32  `json:"service_port"`
	// CheckInterval 健康检查间隔, 例如 "10s"
	CheckInterval string `json:"check_interval"`
}

// Client 客户端 (koober 命令行) 配置
type Client struct {
	ServerURL   string `json:"server_url"`
	SessionFile string `json:"session_file"`
	// TimeoutSeconds 单次远程调用超时
	TimeoutSeconds int64 `json:"timeout_seconds"`
}

// ServiceName 注入到 Fx 的服务名
type ServiceName string
