package storageutils_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/inmemory"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/sqlite"
	storageutils "github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/utils"
)

var _ = Describe("NewDriver", func() {
	ctx := context.Background()

	It("defaults to memory", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("opens sqlite at the given path", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
			DriverType: storageutils.SQLite,
			SQLitePath: filepath.Join(GinkgoT().TempDir(), "t.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()
		Expect(d).To(BeAssignableToTypeOf(&sqlite.Driver{}))
	})

	It("requires a DSN for postgres", func() {
		_, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{DriverType: storageutils.Postgres})
		Expect(err).To(MatchError(ContainSubstring("requires a DSN")))
	})

	It("rejects unknown drivers", func() {
		_, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{DriverType: "mongo"})
		Expect(err).To(MatchError(ContainSubstring("unsupported storage driver")))
	})
})
