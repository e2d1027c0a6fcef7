package sqlinline

const QCreateGenerationAttempts = `--sql 0b7d2f64-5c1e-4f0a-9a83-6e2d1c47b915
create table if not exists generation_attempts (
  id           uuid primary key,
  session_id   uuid not null,
  prompt       text not null,
  image_count  int not null,
  outcome      text not null,
  error        text not null default '',
  result_mime  text not null default '',
  duration_ms  bigint not null,
  created_at   timestamptz not null default now()
);
create index if not exists generation_attempts_session_created_idx
  on generation_attempts (session_id, created_at desc);
`

const QInsertGenerationAttempt = `--sql 7e41c0d2-93ab-4b6f-8d25-1fa0c6e3b874
insert into generation_attempts(
  id,
  session_id,
  prompt,
  image_count,
  outcome,
  error,
  result_mime,
  duration_ms,
  created_at
)
values (
  $1::uuid,
  $2::uuid,
  $3::text,
  $4::int,
  $5::text,
  $6::text,
  $7::text,
  $8::bigint,
  $9::timestamptz
);
`

const QListSessionAttempts = `--sql c3a9e5f1-2d48-4e7b-a6c0-58b1f2d9e03a
select
  id,
  session_id,
  prompt,
  image_count,
  outcome,
  error,
  result_mime,
  duration_ms,
  created_at
from generation_attempts
where session_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QGetSessionAttempt = `--sql 5f2c8a17-b3d4-4e69-9c0e-7a1d4b6e2f58
select
  id,
  session_id,
  prompt,
  image_count,
  outcome,
  error,
  result_mime,
  duration_ms,
  created_at
from generation_attempts
where session_id = $1::uuid
  and id = $2::uuid;
`
