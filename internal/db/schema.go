package db

// schema is the DDL for the tables this core owns. Vendors and events are
// owned by the wider application; they are included here so the worker can
// run standalone in development.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name            TEXT NOT NULL,
    headcount       INTEGER NOT NULL DEFAULT 0,
    budget_ceiling_cents BIGINT NOT NULL DEFAULT 0,
    budget_flex_percent  DOUBLE PRECISION NOT NULL DEFAULT 0,
    preferred_dates JSONB NOT NULL DEFAULT '[]',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS vendors (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id      UUID NOT NULL REFERENCES events(id),
    name          TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    contact_name  TEXT NOT NULL DEFAULT '',
    contact_email TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS vendor_threads (
    id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    vendor_id           UUID NOT NULL REFERENCES vendors(id),
    event_id            UUID NOT NULL REFERENCES events(id),
    status              TEXT NOT NULL DEFAULT 'NOT_CONTACTED',
    decision            TEXT,
    confidence          TEXT,
    follow_up_count     INTEGER NOT NULL DEFAULT 0,
    last_touch          TIMESTAMPTZ,
    escalation_reason   TEXT,
    escalation_category TEXT,
    outreach_approved   BOOLEAN NOT NULL DEFAULT FALSE,
    approved_by         TEXT,
    approved_at         TIMESTAMPTZ,
    provider_thread_id  TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (vendor_id, event_id)
);
CREATE INDEX IF NOT EXISTS idx_threads_provider ON vendor_threads(provider_thread_id);
CREATE INDEX IF NOT EXISTS idx_threads_status ON vendor_threads(status);

CREATE TABLE IF NOT EXISTS thread_messages (
    id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    thread_id           UUID NOT NULL REFERENCES vendor_threads(id),
    sender              TEXT NOT NULL,
    inbound             BOOLEAN NOT NULL DEFAULT FALSE,
    subject             TEXT NOT NULL DEFAULT '',
    body                TEXT NOT NULL DEFAULT '',
    provider_message_id TEXT,
    dedup_key           TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (dedup_key)
);

CREATE TABLE IF NOT EXISTS parsed_responses (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    thread_id    UUID NOT NULL REFERENCES vendor_threads(id),
    message_id   UUID NOT NULL REFERENCES thread_messages(id),
    availability JSONB NOT NULL DEFAULT '[]',
    quote        JSONB,
    inclusions   JSONB NOT NULL DEFAULT '[]',
    questions    JSONB NOT NULL DEFAULT '[]',
    sentiment    TEXT NOT NULL DEFAULT 'NEUTRAL',
    confidence   TEXT NOT NULL,
    raw_output   TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS decisions (
    id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    parsed_response_id  UUID NOT NULL REFERENCES parsed_responses(id),
    thread_id           UUID NOT NULL REFERENCES vendor_threads(id),
    outcome             TEXT NOT NULL,
    reason              TEXT NOT NULL,
    proposed_next_action TEXT NOT NULL DEFAULT '',
    escalation_category TEXT,
    suggested_actions   JSONB NOT NULL DEFAULT '[]',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_decisions_parsed ON decisions(parsed_response_id);

CREATE TABLE IF NOT EXISTS automation_log (
    thread_id  UUID NOT NULL REFERENCES vendor_threads(id),
    seq        INTEGER NOT NULL,
    step_type  TEXT NOT NULL,
    details    JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (thread_id, seq)
);

CREATE TABLE IF NOT EXISTS followup_timers (
    id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    thread_id UUID NOT NULL REFERENCES vendor_threads(id),
    fire_at   TIMESTAMPTZ NOT NULL,
    attempt   INTEGER NOT NULL,
    fired_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_timers_due ON followup_timers(fire_at) WHERE fired_at IS NULL;

CREATE TABLE IF NOT EXISTS unmatched_messages (
    id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    provider_message_id TEXT NOT NULL,
    provider_thread_id  TEXT,
    from_address        TEXT NOT NULL,
    to_address          TEXT NOT NULL,
    subject             TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
