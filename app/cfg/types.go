package cfg

type Cfg struct {
	// Pipeline configuration
	ConfigFile string

	// Serve mode
	Serve        bool
	Port         string
	BaseUrl      string
	Interval     int
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
