package domain

// Algorithm identifies the cipher suite recorded in every EncryptedData record.
//
// Only one algorithm is supported at a time. Records carrying any other value are
// rejected on decryption so that a format change can never be silently misread.
type Algorithm string

const (
	// AES256GCM is AES-256 in Galois/Counter Mode with a PBKDF2-SHA256 derived key.
	AES256GCM Algorithm = "aes-256-gcm"

	// CurrentAlgorithm is the algorithm written by Encrypt and accepted by Decrypt.
	CurrentAlgorithm = AES256GCM

	// CurrentVersion is the EncryptedData format version written by Encrypt and
	// accepted by Decrypt.
	CurrentVersion = 1
)

// Fixed sizes of the EncryptedData components and of the master key.
//
// These are not configurable per call: every record produced by one version of the
// engine is structurally uniform.
const (
	// KeySize is the master key and derived key length in bytes (256 bits).
	KeySize = 32

	// IVSize is the GCM nonce length in bytes (96 bits).
	IVSize = 12

	// TagSize is the GCM authentication tag length in bytes (128 bits).
	TagSize = 16

	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 32

	// PBKDF2Iterations is the iteration count used to derive the per-call key.
	PBKDF2Iterations = 100000

	// FingerprintLength is the number of hex characters exposed by MasterKey.Fingerprint.
	FingerprintLength = 16
)

// KeySource records where the cached master key was resolved from.
type KeySource string

const (
	// KeySourceEnvironment means the key was decoded from the master key environment variable.
	KeySourceEnvironment KeySource = "environment"

	// KeySourceFile means the key was read from a file on the search path.
	KeySourceFile KeySource = "file"

	// KeySourceGenerated means the key was freshly generated by this process.
	KeySourceGenerated KeySource = "generated"
)
