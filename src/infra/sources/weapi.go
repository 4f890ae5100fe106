package sources

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strings"
)

// The weapi request signing scheme: the plaintext JSON body is AES
// encrypted twice (a fixed passphrase, then a per-request random key)
// and the random key is RSA-encrypted with the platform's public key.
// All constants are fixed parts of the protocol and must match exactly
// or the platform rejects the request.
const (
	weapiNonce = "0CoJUm6Qyw8W8jud"
	weapiIV    = "0102030405060708"

	weapiExponent = "65537"
	weapiModulus  = "157794750267131502212476817800345498121872783333389747424011531025366277535262539913701806290766479189477533597854989606803194253978660329941980786072432806427833685472618792592200595694346872951301770580765135349259590167490536138082469680638514416594216629258349130257685001248172188325316586707301643237607"
)

// weapiSign produces the signed request pair for a plaintext JSON body:
// params is the doubly AES-CBC encrypted body (base64) and encSecKey is
// the RSA-encrypted random AES key (256 hex chars). Fails only when the
// system has no secure random source, which is a configuration error.
func weapiSign(plaintext []byte) (params, encSecKey string, err error) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return "", "", fmt.Errorf("weapi signing needs a secure random source: %w", err)
	}

	first, err := aesCBCEncrypt(plaintext, []byte(weapiNonce), []byte(weapiIV))
	if err != nil {
		return "", "", err
	}
	second, err := aesCBCEncrypt(first, key, []byte(weapiIV))
	if err != nil {
		return "", "", err
	}

	return base64.StdEncoding.EncodeToString(second), rsaEncryptKey(key), nil
}

func aesCBCEncrypt(plain, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plain, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// rsaEncryptKey implements the protocol's textbook RSA step: the key
// bytes are reversed, hex-encoded, interpreted as a big integer and
// raised to the public exponent modulo the platform modulus. The result
// is hex, left-padded with zeros to 256 characters.
func rsaEncryptKey(key []byte) string {
	reversed := make([]byte, len(key))
	for i, b := range key {
		reversed[len(key)-1-i] = b
	}

	m := new(big.Int)
	m.SetString(hex.EncodeToString(reversed), 16)
	e, _ := new(big.Int).SetString(weapiExponent, 10)
	n, _ := new(big.Int).SetString(weapiModulus, 10)

	return fmt.Sprintf("%0256x", new(big.Int).Exp(m, e, n))
}

func marshalPlain(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return b, nil
}

// weapiEncode is the descriptor encode step: it signs the plaintext
// body, swaps the request body for the signed pair and rewrites the URL
// from the plain API prefix to the signed endpoint prefix.
func weapiEncode(d *Descriptor) error {
	plaintext, err := marshalPlain(d.Plain)
	if err != nil {
		return err
	}
	params, encSecKey, err := weapiSign(plaintext)
	if err != nil {
		return err
	}
	d.Request.URL = strings.Replace(d.Request.URL, "/api/", "/weapi/", 1)
	d.Request.Params = url.Values{
		"params":    {params},
		"encSecKey": {encSecKey},
	}
	return nil
}
