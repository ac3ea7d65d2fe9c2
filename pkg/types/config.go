package types

// EmailConfig holds SMTP settings for sending compressed output.
type EmailConfig struct {
	// User is the sender account (e.g. "sender@gmail.com").
	User string `json:"user" yaml:"user"`

	// Receiver is the destination address for outgoing attachments.
	Receiver string `json:"receiver" yaml:"receiver"`

	// Password is the plain-text SMTP password. Leave empty to use the
	// sealed password or the secrets directory instead.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// SealedPassword is an encrypted SMTP password produced by config init.
	SealedPassword string `json:"sealed_password,omitempty" yaml:"sealed_password,omitempty"`

	// SMTPServer is the outgoing mail host (default "smtp.gmail.com").
	SMTPServer string `json:"smtp_server" yaml:"smtp_server"`

	// SMTPPort is the outgoing mail port (default 587).
	SMTPPort int `json:"smtp_port" yaml:"smtp_port"`
}

// CompressionConfig holds settings for the compression stage.
// Per prd002-compression R2.1, R5.1-R5.4.
type CompressionConfig struct {
	// SourceDir is the directory scanned for source PDFs (default ".").
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutDir is the directory compressed PDFs are written to
	// (default "pdfebc_out"). Created if missing.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Ghostscript is the Ghostscript binary name or path (default "gs").
	Ghostscript string `json:"ghostscript" yaml:"ghostscript"`

	// Jobs is the number of files compressed concurrently (default 1).
	Jobs int `json:"jobs" yaml:"jobs"`

	// MinSizeBytes is the size below which a PDF is copied through
	// unchanged rather than recompressed (default 1048576).
	MinSizeBytes int64 `json:"min_size_bytes" yaml:"min_size_bytes"`
}

// ServerConfig holds settings for delegating to the web frontend.
// Per prd001-server-delegation R1.2, R3.1.
type ServerConfig struct {
	// Host is the interface the web frontend binds to. No default; the
	// runserver command requires it as a flag.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the TCP port the web frontend binds to, 0 through 65535.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Binary is the web frontend executable name or path (default "pdfebc-web").
	Binary string `json:"binary" yaml:"binary"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Database is the SQLite database path. Empty means
	// ~/.config/pdfebc/history.db.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`

	// MaxResults is the default maximum number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all tool configuration.
type Config struct {
	Email       EmailConfig       `json:"email" yaml:"email"`
	Compression CompressionConfig `json:"compression" yaml:"compression"`
	Server      ServerConfig      `json:"server" yaml:"server"`
	History     HistoryConfig     `json:"history" yaml:"history"`
}
