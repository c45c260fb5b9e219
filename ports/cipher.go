package ports

// FileCipher protects conversion output at rest. Implementations own their
// key material; the orchestrator only sees file-to-file operations.
type FileCipher interface {
	EncryptFile(inputPath, outputPath string) error
	DecryptFile(inputPath, outputPath string) error
}
