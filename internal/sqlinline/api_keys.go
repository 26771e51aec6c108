package sqlinline

const QSelectUserAPIKey = `--sql 5ea963b0-d0b5-4b45-97d7-e1d9265ea323
select coalesce(gemini_api_key, '')
from user_api_keys
where user_id = $1::uuid
limit 1;
`

const QUpsertUserAPIKey = `--sql 80ba0807-fc8b-4161-9114-61e9efcfbfa4
insert into user_api_keys (user_id, gemini_api_key, updated_at)
values ($1::uuid, $2::text, now())
on conflict (user_id) do update set
    gemini_api_key = excluded.gemini_api_key,
    updated_at = now();
`

const QSelectSystemConfig = `--sql c37f1768-7c41-4c1f-84d9-7522968a0f10
select coalesce(value, '')
from system_config
where key = $1::text
limit 1;
`

const QUpsertSystemConfig = `--sql 7a9e6970-15de-47b7-a605-e1a5f4046bf4
insert into system_config (key, value, updated_at)
values ($1::text, $2::text, now())
on conflict (key) do update set
    value = excluded.value,
    updated_at = now();
`
