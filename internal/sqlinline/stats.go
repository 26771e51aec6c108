package sqlinline

const QProfileStats = `--sql 291219fb-bde4-4782-b2a8-aee5daa67cf3
select
    count(*)::int,
    count(*) filter (where subscription_status = 'pro')::int,
    count(*) filter (where role = 'admin')::int
from profiles;
`
