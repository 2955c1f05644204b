package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/verbatim/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).NotTo(BeNil())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Server.Listen).To(Equal(defaults.Server.Listen))
			Expect(cfg.Client.APITarget).To(Equal(defaults.Client.APITarget))
			Expect(cfg.Corpus.Dir).To(Equal(defaults.Corpus.Dir))
			Expect(cfg.Oracle.Profile).To(Equal(defaults.Oracle.Profile))
			Expect(cfg.VectorStore.Provider).To(Equal(defaults.VectorStore.Provider))
			Expect(cfg.Embedding.Model).To(Equal(defaults.Embedding.Model))
			Expect(cfg.Embedding.Dimensions).To(Equal(defaults.Embedding.Dimensions))
			Expect(cfg.LLM.Model).To(Equal(defaults.LLM.Model))
			Expect(cfg.EventStream.Provider).To(Equal(defaults.EventStream.Provider))
		})

		It("loads a valid config file and fills missing fields from defaults", func() {
			data := `version = 0

[oracle]
profile = "research"

[vector_store]
provider = "chroma"
target = "http://localhost:8000"

[embedding]
dimensions = 768
`
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Oracle.Profile).To(Equal("research"))
			Expect(cfg.VectorStore.Provider).To(Equal("chroma"))
			Expect(cfg.VectorStore.Target).To(Equal("http://localhost:8000"))

			// Untouched sections fall back to defaults
			defaults := config.NewDefaultConfig()
			Expect(cfg.Server.Listen).To(Equal(defaults.Server.Listen))
			Expect(cfg.LLM.Provider).To(Equal(defaults.LLM.Provider))
		})

		It("rejects an unsupported config version", func() {
			data := "version = 99\n"
			err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through the TOML file", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Oracle.Profile = "research"
			cfg.Corpus.Dir = "/srv/corpus"
			cfg.EventStream.Provider = "kafka"
			cfg.EventStream.Brokers = []string{"k1:9092", "k2:9092"}

			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Oracle.Profile).To(Equal("research"))
			Expect(loaded.Corpus.Dir).To(Equal("/srv/corpus"))
			Expect(loaded.EventStream.Provider).To(Equal("kafka"))
			Expect(loaded.EventStream.Brokers).To(Equal([]string{"k1:9092", "k2:9092"}))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and reads back a string key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("llm.model", "llama3.3")).To(Succeed())

			value, err := c.GetConfigValue("llm.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("llama3.3"))
		})

		It("sets and reads back a numeric key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("oracle.top_k", "5")).To(Succeed())

			value, err := c.GetConfigValue("oracle.top_k")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("5"))
		})

		It("rejects a non-numeric value for a numeric key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("embedding.dimensions", "lots")).NotTo(Succeed())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("covers every dotted key and validates membership", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElement("oracle.profile"))
			Expect(keys).To(ContainElement("vector_store.provider"))
			Expect(keys).To(ContainElement("event_stream.brokers"))

			for _, key := range keys {
				Expect(config.IsValidConfigKey(key)).To(BeTrue())
			}
			Expect(config.IsValidConfigKey("not.a.key")).To(BeFalse())
		})
	})
})

var _ = Describe("PresetConfig", func() {
	It("builds the expert preset", func() {
		cfg, err := config.PresetConfig("expert")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Oracle.Profile).To(Equal("expert"))
		Expect(cfg.VectorStore.Provider).To(Equal("sqlite"))
	})

	It("builds the research preset on chroma", func() {
		cfg, err := config.PresetConfig("research")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Oracle.Profile).To(Equal("research"))
		Expect(cfg.VectorStore.Provider).To(Equal("chroma"))
		Expect(cfg.VectorStore.Target).To(Equal("http://localhost:8000"))
	})

	It("rejects unknown preset names", func() {
		_, err := config.PresetConfig("turbo")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Flag registry", func() {
	It("registers flags with their registry definitions", func() {
		cmd := &cobra.Command{Use: "test"}

		var listen string
		var topK int
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &topK)

		f := cmd.Flags().Lookup("listen")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("l"))
		Expect(f.DefValue).To(Equal(":8081"))

		Expect(cmd.Flags().Lookup("top-k")).NotTo(BeNil())
	})

	It("binds registered flags into viper precedence", func() {
		cmd := &cobra.Command{Use: "test"}

		var profile string
		config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &profile)
		Expect(cmd.Flags().Set("profile", "research")).To(Succeed())

		v, err := config.InitViper(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagProfile})
		Expect(v.GetString("oracle.profile")).To(Equal("research"))
	})
})
