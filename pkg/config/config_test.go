package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reel/pkg/config"
)

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.Target).To(Equal("http://localhost:8080"))
			Expect(cfg.Client.Agent).To(Equal("default"))
			Expect(cfg.Serve.Listen).To(Equal(":8080"))
			Expect(cfg.Serve.Schema).To(Equal("response"))
		})

		It("overrides defaults with file values", func() {
			content := "[client]\ntarget = \"http://example.com:9090\"\n"
			Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.Target).To(Equal("http://example.com:9090"))
			// Untouched fields keep their defaults.
			Expect(cfg.Client.Agent).To(Equal("default"))
			Expect(cfg.Serve.Listen).To(Equal(":8080"))
		})

		It("rejects malformed TOML", func() {
			content := "[client\ntarget = not quoted"
			Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			_, err = cfger.LoadConfig()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through disk", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Client.Target = "http://localhost:7070"
			cfg.Serve.Schema = "choices"
			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Client.Target).To(Equal("http://localhost:7070"))
			Expect(loaded.Serve.Schema).To(Equal("choices"))
		})

		It("rejects a nil config", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfger.SaveConfig(nil)).NotTo(Succeed())
		})
	})
})

var _ = Describe("InitViper", func() {
	It("applies defaults when no file exists", func() {
		dir := GinkgoT().TempDir()

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.target")).To(Equal("http://localhost:8080"))
		Expect(v.GetString("serve.schema")).To(Equal("response"))
	})

	It("prefers file values over defaults", func() {
		dir := GinkgoT().TempDir()
		content := "[serve]\nlisten = \":9999\"\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("serve.listen")).To(Equal(":9999"))
		Expect(v.GetString("serve.schema")).To(Equal("response"))
	})

	It("prefers environment variables over file values", func() {
		dir := GinkgoT().TempDir()
		content := "[client]\ntarget = \"http://file:1\"\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		GinkgoT().Setenv("REEL_CLIENT_TARGET", "http://env:2")

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.target")).To(Equal("http://env:2"))
	})
})
