// Comando keys: genera el par RSA que firma los tokens de sesión.
//
//	keys -out ./secrets -bits 2048
//
// Escribe jwt_private.pem (PKCS8) y jwt_public.pem (PKIX).
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	out := flag.String("out", ".", "directorio de salida")
	bits := flag.Int("bits", 2048, "tamaño de la clave")
	flag.Parse()

	key, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		fatal("generando clave: " + err.Error())
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		fatal("serializando privada: " + err.Error())
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		fatal("serializando pública: " + err.Error())
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fatal(err.Error())
	}

	writePEM(filepath.Join(*out, "jwt_private.pem"), "PRIVATE KEY", privDER, 0o600)
	writePEM(filepath.Join(*out, "jwt_public.pem"), "PUBLIC KEY", pubDER, 0o644)
	fmt.Println("claves escritas en", *out)
}

func writePEM(path, blockType string, der []byte, mode os.FileMode) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		fatal(err.Error())
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		fatal(err.Error())
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "keys:", msg)
	os.Exit(1)
}
