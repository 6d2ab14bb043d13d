package db

// Timestamps are unix seconds in both dialects.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  is_active INTEGER NOT NULL DEFAULT 1,
  email_verified INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  last_login INTEGER
);

CREATE TABLE IF NOT EXISTS business_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  business_name TEXT NOT NULL,
  sector TEXT NOT NULL,
  country TEXT NOT NULL,
  city TEXT NOT NULL,
  employee_count INTEGER NOT NULL DEFAULT 0,
  registration_type TEXT,
  contact_email TEXT,
  contact_phone TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS themes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  order_index INTEGER NOT NULL,
  weight REAL NOT NULL DEFAULT 1.0,
  is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  help_text TEXT NOT NULL DEFAULT '',
  order_index INTEGER NOT NULL,
  reverse_scored INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  business_profile_id TEXT NOT NULL REFERENCES business_profiles(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'draft',
  started_at INTEGER NOT NULL,
  completed_at INTEGER,
  updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS assessments_user_idx ON assessments (user_id, started_at);

CREATE TABLE IF NOT EXISTS responses (
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
  comment TEXT,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (assessment_id, question_id)
);

CREATE TABLE IF NOT EXISTS theme_scores (
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
  mean_score REAL NOT NULL,
  percentage REAL NOT NULL,
  performance_band TEXT NOT NULL,
  PRIMARY KEY (assessment_id, theme_id)
);

CREATE TABLE IF NOT EXISTS assessment_summaries (
  assessment_id TEXT PRIMARY KEY REFERENCES assessments(id) ON DELETE CASCADE,
  composite_mean REAL,
  composite_percentage REAL,
  performance_band TEXT,
  scored_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pdf_reports (
  id TEXT PRIMARY KEY,
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  file_path TEXT NOT NULL,
  file_size INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  email_verified BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL,
  last_login BIGINT
);

CREATE TABLE IF NOT EXISTS business_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  business_name TEXT NOT NULL,
  sector TEXT NOT NULL,
  country TEXT NOT NULL,
  city TEXT NOT NULL,
  employee_count INTEGER NOT NULL DEFAULT 0,
  registration_type TEXT,
  contact_email TEXT,
  contact_phone TEXT,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS themes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  order_index INTEGER NOT NULL,
  weight DOUBLE PRECISION NOT NULL DEFAULT 1.0,
  is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  help_text TEXT NOT NULL DEFAULT '',
  order_index INTEGER NOT NULL,
  reverse_scored BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  business_profile_id TEXT NOT NULL REFERENCES business_profiles(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'draft',
  started_at BIGINT NOT NULL,
  completed_at BIGINT,
  updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS assessments_user_idx ON assessments (user_id, started_at);

CREATE TABLE IF NOT EXISTS responses (
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
  comment TEXT,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY (assessment_id, question_id)
);

CREATE TABLE IF NOT EXISTS theme_scores (
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
  mean_score DOUBLE PRECISION NOT NULL,
  percentage DOUBLE PRECISION NOT NULL,
  performance_band TEXT NOT NULL,
  PRIMARY KEY (assessment_id, theme_id)
);

CREATE TABLE IF NOT EXISTS assessment_summaries (
  assessment_id TEXT PRIMARY KEY REFERENCES assessments(id) ON DELETE CASCADE,
  composite_mean DOUBLE PRECISION,
  composite_percentage DOUBLE PRECISION,
  performance_band TEXT,
  scored_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS pdf_reports (
  id TEXT PRIMARY KEY,
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  file_path TEXT NOT NULL,
  file_size BIGINT NOT NULL,
  created_at BIGINT NOT NULL,
  expires_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
