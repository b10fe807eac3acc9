package config

// DatabaseConfig locates the MySQL database holding the journey journal.
// The journal is optional; it is enabled by setting DB_HOST.
type DatabaseConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		User: envStr("DB_USER", "root"),
		Pass: envStr("DB_PASS", ""),
		Host: envStr("DB_HOST", ""),
		Port: envStr("DB_PORT", "3306"),
		Name: envStr("DB_NAME", "car_pooling"),
	}
}

// Enabled reports whether a journal database was configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }
