package secrets

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
)

// hmacDRBG is the HMAC_DRBG of NIST SP 800-90A over SHA-256, without
// reseeding or additional input. Seeded with the same material it always
// produces the same stream.
type hmacDRBG struct {
	k []byte
	v []byte
}

func newHMACDRBG(entropy, nonce, pers []byte) *hmacDRBG {
	d := &hmacDRBG{
		k: make([]byte, sha256.Size),
		v: make([]byte, sha256.Size),
	}
	for i := range d.v {
		d.v[i] = 0x01
	}

	seed := make([]byte, 0, len(entropy)+len(nonce)+len(pers))
	seed = append(seed, entropy...)
	seed = append(seed, nonce...)
	seed = append(seed, pers...)
	d.update(seed)

	return d
}

func (d *hmacDRBG) mac() hash.Hash {
	return hmac.New(sha256.New, d.k)
}

func (d *hmacDRBG) update(seed []byte) {
	m := d.mac()
	m.Write(d.v)
	m.Write([]byte{0x00})
	m.Write(seed)
	d.k = m.Sum(nil)

	m = d.mac()
	m.Write(d.v)
	d.v = m.Sum(nil)

	if len(seed) == 0 {
		return
	}

	m = d.mac()
	m.Write(d.v)
	m.Write([]byte{0x01})
	m.Write(seed)
	d.k = m.Sum(nil)

	m = d.mac()
	m.Write(d.v)
	d.v = m.Sum(nil)
}

func (d *hmacDRBG) generate(n int) []byte {
	out := make([]byte, 0, n+sha256.Size)
	for len(out) < n {
		m := d.mac()
		m.Write(d.v)
		d.v = m.Sum(nil)
		out = append(out, d.v...)
	}
	d.update(nil)
	return out[:n]
}

func (d *hmacDRBG) zero() {
	for i := range d.k {
		d.k[i] = 0
	}
	for i := range d.v {
		d.v[i] = 0
	}
}
