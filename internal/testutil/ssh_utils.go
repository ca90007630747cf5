package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"

	"golang.org/x/crypto/ssh"
)

// CreateSSHKeyPairOnDisk generates a throwaway ed25519 keypair and writes
// both halves to temp files. Returns public path, its cleanup, private path,
// its cleanup.
func CreateSSHKeyPairOnDisk() (string, func(), string, func()) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}

	block, err := ssh.MarshalPrivateKey(priv, "edgequery test key")
	if err != nil {
		panic(err)
	}
	privatePEM := pem.EncodeToMemory(block)

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		panic(err)
	}
	authorizedKey := ssh.MarshalAuthorizedKey(sshPub)

	publicKeyPath, cleanupPublicKey, err := WriteStringToTempFile(string(authorizedKey))
	if err != nil {
		panic(err)
	}
	privateKeyPath, cleanupPrivateKey, err := WriteStringToTempFile(string(privatePEM))
	if err != nil {
		cleanupPublicKey()
		panic(err)
	}

	return publicKeyPath, cleanupPublicKey, privateKeyPath, cleanupPrivateKey
}
