package domain

import "fmt"

// Platform identifica uma plataforma externa de anúncios suportada pela API
type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformFacebook Platform = "facebook"
	PlatformKakao    Platform = "kakao"
	PlatformNaver    Platform = "naver"
	PlatformCoupang  Platform = "coupang"
	PlatformAmazon   Platform = "amazon"
	PlatformTikTok   Platform = "tiktok"
)

// AllPlatforms lista todas as plataformas suportadas
var AllPlatforms = []Platform{
	PlatformGoogle,
	PlatformFacebook,
	PlatformKakao,
	PlatformNaver,
	PlatformCoupang,
	PlatformAmazon,
	PlatformTikTok,
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform converte uma string em Platform, validando contra o conjunto suportado
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	for _, known := range AllPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("plataforma não suportada: %q", s)
}
