package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestWriteStringToTempFile(t *testing.T) {
	path, cleanup, err := WriteStringToTempFile("hello")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCreateSSHKeyPairOnDisk(t *testing.T) {
	publicKeyPath, cleanupPublic, privateKeyPath, cleanupPrivate := CreateSSHKeyPairOnDisk()
	defer cleanupPublic()
	defer cleanupPrivate()

	privateBytes, err := os.ReadFile(privateKeyPath)
	require.NoError(t, err)
	signer, err := ssh.ParsePrivateKey(privateBytes)
	require.NoError(t, err)

	publicBytes, err := os.ReadFile(publicKeyPath)
	require.NoError(t, err)
	publicKey, _, _, _, err := ssh.ParseAuthorizedKey(publicBytes)
	require.NoError(t, err)

	assert.Equal(t, publicKey.Type(), signer.PublicKey().Type())
}
