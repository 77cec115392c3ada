// Project Structure Overview
/*
uni402-backend/
├── cmd/
│   └── server/            serve, migrate and seed commands
├── internal/
│   ├── cache/             access grant cache (Redis or in-process)
│   ├── config/
│   ├── database/          connection, migrations, demo seeds
│   ├── handlers/          lessons, access, payments, health
│   ├── i18n/
│   │   └── locales/
│   ├── middleware/        cors, rate limits, audit log, api key
│   ├── models/
│   ├── router/
│   ├── services/          lesson, access, payment, ledger, storage
│   └── utils/
├── web/                   storefront pages
└── go.mod
*/

// Package uni402 is a pay-per-lesson backend. Lessons are unlocked by an x402 style
// payment challenge and a client submitted payment claim.
package uni402
