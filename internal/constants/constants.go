package constants

import "time"

// DefaultSettingsPath is the settings file read when -settings is not given.
const DefaultSettingsPath = "settings.json"

// DefaultDBPath is used when sec.db_path is left empty in a fresh settings file.
const DefaultDBPath = "recruiter.db"

// DataDirName is the directory under $HOME holding the editor log.
const DataDirName = ".pnw-recruiter"

// EditorLogFile is the log file used while the settings editor owns the terminal.
const EditorLogFile = "editor.log"

// Politics & War endpoints. The nations endpoint is a prefix; the API key is appended to it.
const (
	DefaultLoginEndpoint   = "https://politicsandwar.com/login/"
	DefaultMessageEndpoint = "https://politicsandwar.com/inbox/message/"
	DefaultNationsEndpoint = "https://politicsandwar.com/api/nations/?key="
)

// NoAlliance is the alliance value the nation API reports for unaligned nations.
const NoAlliance = "None"

// Login form constants.
const (
	LoginFormValue   = "Login"
	SendMessageValue = "Send Message"
)

// UserAgent is sent with every request to the game.
const UserAgent = "pnw-recruiter/1.0"

// HTTPRequestTimeout caps a single request to the game.
const HTTPRequestTimeout = 60 * time.Second

// DefaultRequestRate is the outbound request ceiling (requests per second) shared by fetch, login and send.
const DefaultRequestRate = 1.0

// DefaultRequestBurst is the burst allowed by the outbound limiter.
const DefaultRequestBurst = 2

// DefaultDelay is the pause before each message, in seconds.
const DefaultDelay = 2

// DefaultFrequency is the pause between rounds, in seconds.
const DefaultFrequency = 3600

// DefaultContactAgain is the number of days before a nation may be messaged again.
const DefaultContactAgain = 30

// LedgerTimeFormat matches the text SQLite's datetime('now') produces.
const LedgerTimeFormat = "2006-01-02 15:04:05"

// MinEventBusBufferSize is the minimum buffer per subscriber channel.
const MinEventBusBufferSize = 64

// DefaultListLimit bounds list queries on the status API.
const DefaultListLimit = 50

// MaxListLimit is the largest limit the status API accepts.
const MaxListLimit = 500

// StatusShutdownTimeout bounds the status server's graceful shutdown.
const StatusShutdownTimeout = 5 * time.Second
