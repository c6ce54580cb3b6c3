package postgres_test

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/infra/postgres"
)

var _ = Describe("DatabaseConfig", func() {
	DescribeTable("HasReplica",
		func(config postgres.DatabaseConfig, expected bool) {
			Expect(config.HasReplica()).To(Equal(expected))
		},
		Entry("without read host", postgres.DatabaseConfig{WriteHost: "db", WritePort: "5432"}, false),
		Entry("with the primary as read host", postgres.DatabaseConfig{WriteHost: "db", WritePort: "5432", ReadHost: "db"}, false),
		Entry("with another read host", postgres.DatabaseConfig{WriteHost: "db", WritePort: "5432", ReadHost: "replica"}, true),
		Entry("with another read port", postgres.DatabaseConfig{WriteHost: "db", WritePort: "5432", ReadPort: "6432"}, true),
	)
})

var _ = Describe("error helpers", func() {
	It("should recognise wrapped postgres errors", func() {
		fkErr := fmt.Errorf("insert speaker: %w", &pgconn.PgError{Code: "23503"})
		uniqueErr := fmt.Errorf("insert tag: %w", &pgconn.PgError{Code: "23505"})

		Expect(postgres.IsForeignKeyViolation(fkErr)).To(BeTrue())
		Expect(postgres.IsUniqueViolation(fkErr)).To(BeFalse())
		Expect(postgres.IsUniqueViolation(uniqueErr)).To(BeTrue())
		Expect(postgres.IsNoRows(fmt.Errorf("get item: %w", pgx.ErrNoRows))).To(BeTrue())
		Expect(postgres.IsNoRows(uniqueErr)).To(BeFalse())
	})
})
