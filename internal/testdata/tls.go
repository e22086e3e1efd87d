// Package testdata は、テストで使用する証明書とQUICのテスト用サーバーを提供します。
package testdata

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"sync"
	"time"
)

// ALPNは、テスト用サーバーのALPNです。
const ALPN = "quicnet"

var (
	defaultOnce sync.Once
	defaultCert tls.Certificate
)

// GenerateCertificateは、localhost向けの自己署名証明書を生成します。
func GenerateCertificate() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return tls.Certificate{}, err
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"quicnet test"},
			CommonName:   "localhost",
		},
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// Certificateは、パッケージで共有する自己署名証明書を返却します。
func Certificate() tls.Certificate {
	defaultOnce.Do(func() {
		cert, err := GenerateCertificate()
		if err != nil {
			panic(err)
		}
		defaultCert = cert
	})
	return defaultCert
}

// CertPoolは、Certificateをルート証明書として含むプールを返却します。
func CertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(Certificate().Leaf)
	return pool
}

// GetTLSConfigは、サーバーとクライアントの両方で使用できるTLS設定を返却します。
//
// 呼び出しごとに新しい設定を返却するため、呼び出し元で変更して構いません。
func GetTLSConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{Certificate()},
		RootCAs:      CertPool(),
		ServerName:   "localhost",
		NextProtos:   []string{ALPN},
	}
}
