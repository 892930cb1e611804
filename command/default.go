package command

const (
	JSONOutputFlag = "json"
	ConfigFlag     = "config"
	EndpointFlag   = "endpoint"
	DataDirFlag    = "data-dir"
	LogLevelFlag   = "log-level"
)
