package config

const (
	// Default values
	DefaultInputFile         = "./alterar_pedidos.csv"
	DefaultReportDir         = "./relatorios"
	DefaultLogDir            = "./logs"
	DefaultMaxAttempts       = 2
	DefaultLocateAttempts    = 5
	DefaultLocateIntervalMS  = 500
	DefaultRetryDelaySecs    = 2
	DefaultWatchDebounceSecs = 2
	DefaultS3PartSize        = 5 * 1024 * 1024 // 5MB
)

// DefaultBlockingPhrases are the SAP informational messages that indicate a
// silent no-op and must be surfaced as failures. Substring match against
// the lowercased status text. Deliberately not expanded beyond what the
// production runs have shown.
var DefaultBlockingPhrases = []string{
	"sem alteração",
	"não foi feita",
}

const (
	// Environment variable names
	EnvPrefix = "SAPROBOT"

	// S3 environment variable names (saprobot-specific)
	// Note: AWS credentials and region use standard AWS env vars (AWS_ACCESS_KEY_ID,
	// AWS_REGION, etc.) which are automatically picked up by the AWS SDK. This enables
	// compatibility with aws-vault, aws-cli, and other AWS tools.
	EnvS3Bucket   = "SAPROBOT_S3_BUCKET"
	EnvS3Prefix   = "SAPROBOT_S3_PREFIX"
	EnvS3Endpoint = "SAPROBOT_S3_ENDPOINT"
)
