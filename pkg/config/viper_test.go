package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
)

// setenv sets an environment variable for the duration of the current test.
func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("airtable.table_name")).To(Equal(defaults.Airtable.TableName))
		Expect(v.GetString("server.listen")).To(Equal(defaults.Server.Listen))
		Expect(v.GetString("cache.driver")).To(Equal(defaults.Cache.Driver))
		Expect(v.GetInt("generation.max_tokens")).To(Equal(defaults.Generation.MaxTokens))
		Expect(v.GetBool("sync.on_start")).To(BeTrue())
	})

	It("reads config file values over defaults", func() {
		data := `[server]
listen = ":9999"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("server.listen")).To(Equal(":9999"))
		Expect(v.GetString("cache.driver")).To(Equal(config.CacheDriverMemory))
	})

	It("respects environment variables with HIVESWARM_ prefix", func() {
		setenv("HIVESWARM_CACHE_DRIVER", "sqlite")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("cache.driver")).To(Equal("sqlite"))
	})

	It("env vars take precedence over config file values", func() {
		data := `[server]
listen = ":9999"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		setenv("HIVESWARM_SERVER_LISTEN", ":1234")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("server.listen")).To(Equal(":1234"))
	})

	It("honors the unprefixed airtable and claude variables", func() {
		setenv("AIRTABLE_BASE_ID", "appLegacy")
		setenv("AIRTABLE_TABLE_NAME", "LegacyTable")
		setenv("AIRTABLE_API_KEY", "patLegacy")
		setenv("CLAUDE_API_KEY", "sk-ant-legacy")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("airtable.base_id")).To(Equal("appLegacy"))
		Expect(v.GetString("airtable.table_name")).To(Equal("LegacyTable"))
		Expect(v.GetString("airtable.api_key")).To(Equal("patLegacy"))
		Expect(v.GetString("generation.api_key")).To(Equal("sk-ant-legacy"))
	})

	It("prefers the prefixed variable over the legacy one", func() {
		setenv("AIRTABLE_BASE_ID", "appLegacy")
		setenv("HIVESWARM_AIRTABLE_BASE_ID", "appPrefixed")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("airtable.base_id")).To(Equal("appPrefixed"))
	})
})

var _ = Describe("Load", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "load-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("resolves durations and defaults", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		s, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SyncTimeout).To(Equal(2 * time.Minute))
		Expect(s.HarmonizeTimeout).To(Equal(60 * time.Second))
		Expect(s.SyncOnStart).To(BeTrue())
		Expect(s.Listen).To(Equal("0.0.0.0:8080"))
		Expect(s.Airtable.TableName).To(Equal("MarleyMemory"))
	})

	It("splits broker lists", func() {
		setenv("HIVESWARM_EVENTSTREAM_BROKERS", " k1:9092, ,k2:9092 ")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		s, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Brokers()).To(Equal([]string{"k1:9092", "k2:9092"}))
	})

	It("rejects unknown cache drivers", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		v.Set("cache.driver", "redis")

		_, err = config.Load(v)
		Expect(err).To(MatchError(ContainSubstring("unsupported cache driver")))
	})

	It("rejects malformed durations", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		v.Set("sync.timeout", "later")

		_, err = config.Load(v)
		Expect(err).To(MatchError(ContainSubstring("sync.timeout")))
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "bindflag-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
		Expect(v.GetString("server.listen")).To(Equal(":7777"))
	})

	It("falls through to config when flag not set", func() {
		data := `[server]
listen = ":5555"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
		Expect(v.GetString("server.listen")).To(Equal(":5555"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.FlagSet{}, []string{"nonexistent"})

		Expect(v.GetString("server.listen")).To(Equal("0.0.0.0:8080"))
	})

	It("AddStringFlag pulls name, shorthand, and description from FlagSet", func() {
		cmd := &cobra.Command{Use: "test"}
		var table string
		config.AddStringFlag(cmd, config.Flags, config.FlagTable, &table)

		f := cmd.Flags().Lookup("table")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("t"))
		Expect(f.Usage).To(Equal("Airtable table holding memory records"))
		Expect(f.DefValue).To(Equal("MarleyMemory"))
	})

	It("AddIntFlag defaults max-tokens from the config defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		var tokens int
		config.AddIntFlag(cmd, config.Flags, config.FlagMaxTokens, &tokens)

		f := cmd.Flags().Lookup("max-tokens")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("4000"))
	})
})
