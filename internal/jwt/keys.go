package jwt

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// LoadRSAPrivateKey lee una private key RSA desde un PEM (PKCS#1 o PKCS#8).
func LoadRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwt: leyendo private key %s: %w", path, err)
	}
	return ParseRSAPrivateKeyPEM(b)
}

// LoadRSAPublicKey lee una public key RSA desde un PEM (PKIX o PKCS#1).
// También acepta un certificado X.509 y extrae la clave.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwt: leyendo public key %s: %w", path, err)
	}
	return ParseRSAPublicKeyPEM(b)
}

// ParseRSAPrivateKeyPEM parsea el contenido PEM de una private key RSA.
func ParseRSAPrivateKeyPEM(b []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("jwt: PEM inválido")
	}
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parseando private key: %w", err)
	}
	rk, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("jwt: la private key no es RSA")
	}
	return rk, nil
}

// ParseRSAPublicKeyPEM parsea el contenido PEM de una public key RSA.
func ParseRSAPublicKeyPEM(b []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("jwt: PEM inválido")
	}
	if block.Type == "CERTIFICATE" {
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwt: parseando certificado: %w", err)
		}
		pk, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("jwt: el certificado no tiene clave RSA")
		}
		return pk, nil
	}
	if k, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parseando public key: %w", err)
	}
	pk, ok := k.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("jwt: la public key no es RSA")
	}
	return pk, nil
}
